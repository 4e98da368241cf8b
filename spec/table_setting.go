// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package spec

import (
	"fmt"
	"strings"

	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/sdk/achieve"
	"github.com/zintix-labs/rnglab/sdk/pity"
	"github.com/zintix-labs/rnglab/sdk/table"
)

// TID 稀有度表 id，在同一個 Lab 內唯一。
type TID uint32

// DefaultFakeDraws 真實抽卡前的假抽次數。
const DefaultFakeDraws = 10

// TableSetting 一張稀有度表與其玩法參數的完整設定。
type TableSetting struct {
	TableName    string                `yaml:"table_name"   json:"table_name"`
	TableID      TID                   `yaml:"table_id"     json:"table_id"`
	Tiers        []table.Tier          `yaml:"tiers"        json:"tiers"`
	Pity         []pity.Rule           `yaml:"pity"         json:"pity"`
	Achievements []achieve.Achievement `yaml:"achievements" json:"achievements"`
	Economy      EconomySetting        `yaml:"economy"      json:"economy"`
	// FakeDraws 為 nil 時使用 DefaultFakeDraws；明確寫 0 則不做假抽。
	FakeDraws *int `yaml:"fake_draws" json:"fake_draws"`
	FastRoll  bool `yaml:"fast_roll"  json:"fast_roll"`

	tb  *table.Table
	pe  *pity.Engine
	ach *achieve.Engine
}

// init 補預設值並建出不可變的 table/pity/achieve 引擎。
func (ts *TableSetting) init() error {
	ts.TableName = strings.TrimSpace(ts.TableName)
	ts.Economy.init()
	if ts.FakeDraws == nil {
		n := DefaultFakeDraws
		ts.FakeDraws = &n
	}
	var err error
	if ts.tb, err = table.New(ts.Tiers); err != nil {
		return errs.Wrap(err, "table_name: "+ts.TableName)
	}
	if ts.pe, err = pity.New(ts.Pity...); err != nil {
		return errs.Wrap(err, "table_name: "+ts.TableName)
	}
	if ts.ach, err = achieve.New(ts.Achievements...); err != nil {
		return errs.Wrap(err, "table_name: "+ts.TableName)
	}
	return ts.valid()
}

// valid 跨欄位檢查。
func (ts *TableSetting) valid() error {
	if ts.TableName == "" {
		return errs.NewFatal("table_name required")
	}
	for _, r := range ts.Pity {
		if _, ok := ts.tb.Lookup(r.Tier); !ok {
			return errs.NewFatal(fmt.Sprintf("table_name: %s err:pity tier %q not in tiers", ts.TableName, r.Tier))
		}
	}
	if *ts.FakeDraws < 0 {
		return errs.NewFatal(fmt.Sprintf("table_name: %s err:negative fake_draws", ts.TableName))
	}
	return ts.Economy.valid(ts.TableName)
}

// Table 回傳 init 建出的稀有度表。
func (ts *TableSetting) Table() *table.Table { return ts.tb }

func (ts *TableSetting) PityEngine() *pity.Engine { return ts.pe }

func (ts *TableSetting) AchieveEngine() *achieve.Engine { return ts.ach }

// Fakes 回傳實際的假抽次數；FastRoll 時為 0。
func (ts *TableSetting) Fakes() int {
	if ts.FastRoll || ts.FakeDraws == nil {
		return 0
	}
	return *ts.FakeDraws
}

// Default 回傳內建的完整十階表設定（已初始化）。
func Default() *TableSetting {
	ts := &TableSetting{
		TableName:    "apollo",
		TableID:      4,
		Tiers:        table.Classic(),
		Pity:         pity.Defaults(),
		Achievements: achieve.Defaults(),
	}
	if err := ts.init(); err != nil {
		panic(err)
	}
	return ts
}
