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
// Package table 定義稀有度表：有序、不可變的 Tier 集合。
//
// 每個 Tier 的基礎權重為 1/Odds；表格順序只在抽選走訪與浮點誤差回退時有意義。
package table

import (
	"strings"

	"github.com/zintix-labs/rnglab/errs"
)

// Tier 稀有度等級
type Tier struct {
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color" json:"color"`
	Odds  int    `yaml:"odds" json:"odds"`
}

// BaseWeight 回傳 1/Odds。
func (t Tier) BaseWeight() float64 {
	return 1 / float64(t.Odds)
}

// Table 建立後不可變，可安全跨 goroutine 共用。
type Table struct {
	tiers []Tier
	index map[string]int
}

// New 驗證並建立 Table：不可為空、名稱不可空白或重複、Odds 必須為正。
func New(tiers []Tier) (*Table, error) {
	if len(tiers) == 0 {
		return nil, errs.NewFatal("table: no tiers")
	}
	t := &Table{
		tiers: make([]Tier, len(tiers)),
		index: make(map[string]int, len(tiers)),
	}
	for i, tr := range tiers {
		if strings.TrimSpace(tr.Name) == "" {
			return nil, errs.Fatalf("table: tier #%d has blank name", i)
		}
		if tr.Odds <= 0 {
			return nil, errs.Fatalf("table: tier %q odds must be positive, got %d", tr.Name, tr.Odds)
		}
		if _, dup := t.index[tr.Name]; dup {
			return nil, errs.Fatalf("table: duplicate tier %q", tr.Name)
		}
		t.tiers[i] = tr
		t.index[tr.Name] = i
	}
	return t, nil
}

// MustNew 同 New，失敗時 panic；只用於內建常數表。
func MustNew(tiers []Tier) *Table {
	t, err := New(tiers)
	if err != nil {
		panic(err)
	}
	return t
}

// Tiers 回傳依表格順序的副本。
func (t *Table) Tiers() []Tier {
	out := make([]Tier, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// At 回傳第 i 個 Tier，i 必須在 [0,Len) 內。
func (t *Table) At(i int) Tier { return t.tiers[i] }

func (t *Table) Lookup(name string) (Tier, bool) {
	i, ok := t.index[name]
	if !ok {
		return Tier{}, false
	}
	return t.tiers[i], true
}

// Index 回傳 name 的位置，不存在回傳 -1。
func (t *Table) Index(name string) int {
	i, ok := t.index[name]
	if !ok {
		return -1
	}
	return i
}

func (t *Table) Len() int { return len(t.tiers) }

// Last 回傳抽選回退用的最後一個 Tier。
func (t *Table) Last() Tier { return t.tiers[len(t.tiers)-1] }

// Names 依表格順序回傳名稱。
func (t *Table) Names() []string {
	out := make([]string, len(t.tiers))
	for i, tr := range t.tiers {
		out[i] = tr.Name
	}
	return out
}
