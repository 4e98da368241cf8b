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
	"math"

	"github.com/zintix-labs/rnglab/errs"
)

const (
	DefaultBuffCost       = 5000
	DefaultBuffMultiplier = 1.2
)

// EconomySetting buff 的價格與倍率。
//
// Toggleable 為 true 時，購買後可免費開關（不退款）；否則為一次性購買。
type EconomySetting struct {
	BuffCost       int     `yaml:"buff_cost"       json:"buff_cost"`
	BuffMultiplier float64 `yaml:"buff_multiplier" json:"buff_multiplier"`
	Toggleable     bool    `yaml:"toggleable"      json:"toggleable"`
}

func (es *EconomySetting) init() {
	if es.BuffCost == 0 {
		es.BuffCost = DefaultBuffCost
	}
	if es.BuffMultiplier == 0 {
		es.BuffMultiplier = DefaultBuffMultiplier
	}
}

func (es *EconomySetting) valid(name string) error {
	if es.BuffCost < 0 {
		return errs.NewFatal(fmt.Sprintf("table_name: %s err:negative buff_cost", name))
	}
	if !(es.BuffMultiplier > 0) || math.IsInf(es.BuffMultiplier, 0) {
		return errs.NewFatal(fmt.Sprintf("table_name: %s err:buff_multiplier must be positive", name))
	}
	return nil
}
