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
// Package pity 實作保底引擎：依連續未中的次數放大指定 Tier 的權重。
//
// 計數語意（先加後歸零）：一次真實抽卡抽到 T 之後，
// 所有受追蹤的計數器 +1，若 T 受追蹤則其計數器歸零。
package pity

import (
	"maps"
	"slices"

	"github.com/zintix-labs/rnglab/errs"
)

// Rule 單一 Tier 的保底規則：Counters[Tier] >= Threshold 時權重乘上 Boost。
type Rule struct {
	Tier      string  `yaml:"tier" json:"tier"`
	Threshold int     `yaml:"threshold" json:"threshold"`
	Boost     float64 `yaml:"boost" json:"boost"`
}

// Counters 受追蹤 Tier 自上次命中以來的真實抽卡次數。
type Counters map[string]int

// Clone 回傳深拷貝；nil 回傳空 map。
func (c Counters) Clone() Counters {
	out := make(Counters, len(c))
	maps.Copy(out, c)
	return out
}

// Defaults 回傳預設保底規則。
func Defaults() []Rule {
	return []Rule{
		{Tier: "Ultra Rare", Threshold: 300, Boost: 10},
		{Tier: "Legendary", Threshold: 700, Boost: 50},
		{Tier: "Mythic", Threshold: 1000, Boost: 100},
	}
}

// Engine 不可變；所有方法皆為純函式。
type Engine struct {
	rules map[string]Rule
	order []string
}

// New 驗證並建立 Engine；Tier 不可重複，Threshold >= 1，Boost > 0。
// 不帶規則時回傳不做任何放大的 Engine。
func New(rules ...Rule) (*Engine, error) {
	e := &Engine{rules: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		if r.Tier == "" {
			return nil, errs.NewFatal("pity: rule without tier")
		}
		if _, dup := e.rules[r.Tier]; dup {
			return nil, errs.Fatalf("pity: duplicate rule for %q", r.Tier)
		}
		if r.Threshold < 1 {
			return nil, errs.Fatalf("pity: %q threshold must be >= 1, got %d", r.Tier, r.Threshold)
		}
		if !(r.Boost > 0) {
			return nil, errs.Fatalf("pity: %q boost must be > 0, got %v", r.Tier, r.Boost)
		}
		e.rules[r.Tier] = r
		e.order = append(e.order, r.Tier)
	}
	return e, nil
}

// Multiplier 回傳 tier 目前的保底倍率；未追蹤或未達門檻回傳 1。
func (e *Engine) Multiplier(tier string, c Counters) float64 {
	r, ok := e.rules[tier]
	if !ok || c[tier] < r.Threshold {
		return 1
	}
	return r.Boost
}

// Advance 套用一次真實抽卡結果，回傳新的 Counters，輸入 c 不會被修改。
// c 中未受追蹤的鍵原樣保留。
func (e *Engine) Advance(c Counters, drawn string) Counters {
	next := c.Clone()
	for _, tier := range e.order {
		next[tier]++
	}
	if _, ok := e.rules[drawn]; ok {
		next[drawn] = 0
	}
	return next
}

// Step 與 Advance 同語意但就地修改 c，供模擬熱路徑使用。
func (e *Engine) Step(c Counters, drawn string) {
	for _, tier := range e.order {
		c[tier]++
	}
	if _, ok := e.rules[drawn]; ok {
		c[drawn] = 0
	}
}

// Tracked 依宣告順序回傳受追蹤的 Tier。
func (e *Engine) Tracked() []string {
	return slices.Clone(e.order)
}

func (e *Engine) Rule(tier string) (Rule, bool) {
	r, ok := e.rules[tier]
	return r, ok
}

// Progress 顯示用：受追蹤 Tier 的 n/threshold 與是否已觸發。
type Progress struct {
	Tier      string  `json:"tier" yaml:"tier"`
	Count     int     `json:"count" yaml:"count"`
	Threshold int     `json:"threshold" yaml:"threshold"`
	Boost     float64 `json:"boost" yaml:"boost"`
	Active    bool    `json:"active" yaml:"active"`
}

func (e *Engine) Progress(c Counters) []Progress {
	out := make([]Progress, 0, len(e.order))
	for _, tier := range e.order {
		r := e.rules[tier]
		out = append(out, Progress{
			Tier:      tier,
			Count:     c[tier],
			Threshold: r.Threshold,
			Boost:     r.Boost,
			Active:    c[tier] >= r.Threshold,
		})
	}
	return out
}
