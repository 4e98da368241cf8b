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
package state

import "github.com/zintix-labs/rnglab/errs"

// Economy 可花費的抽卡餘額與 buff 旗標。
//
// RollCount 為可用餘額，Spent 為累計花費；兩者之和應等於 Stats.Total()。
type Economy struct {
	RollCount  int  `json:"roll_count" yaml:"roll_count"`
	Spent      int  `json:"spent" yaml:"spent"`
	BuffOwned  bool `json:"buff_owned" yaml:"buff_owned"`
	BuffActive bool `json:"buff_active" yaml:"buff_active"`
}

// PurchaseBuff 扣款並啟用 buff，扣款與設旗標在同一步完成。
// 失敗時回傳原值與錯誤，不扣款。已擁有但切成關閉時只重新啟用，不再扣款。
func (e Economy) PurchaseBuff(cost int) (Economy, error) {
	if e.BuffActive {
		return e, errs.ErrBuffActive
	}
	if e.BuffOwned {
		e.BuffActive = true
		return e, nil
	}
	if e.RollCount < cost {
		return e, errs.ErrInsufficientFunds
	}
	e.RollCount -= cost
	e.Spent += cost
	e.BuffOwned = true
	e.BuffActive = true
	return e, nil
}

// ToggleBuff 只在 toggleable 且已擁有 buff 時切換啟用狀態，不退款。
func (e Economy) ToggleBuff(toggleable bool) (Economy, error) {
	if !toggleable || !e.BuffOwned {
		return e, errs.ErrBuffLocked
	}
	e.BuffActive = !e.BuffActive
	return e, nil
}

// Multiplier 啟用時回傳 m，否則 1。
func (e Economy) Multiplier(m float64) float64 {
	if e.BuffActive {
		return m
	}
	return 1
}

// Credit 記一次真實抽卡。
func (e Economy) Credit() Economy {
	e.RollCount++
	return e
}
