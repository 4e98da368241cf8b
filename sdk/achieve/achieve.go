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
// Package achieve 依抽中 Tier 的 Odds 解鎖成就；解鎖單調（true 不會回到 false）。
package achieve

import (
	"maps"

	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/sdk/table"
)

// Achievement 抽中 Odds >= Threshold 的 Tier 時解鎖。
type Achievement struct {
	ID        string `yaml:"id" json:"id"`
	Threshold int    `yaml:"threshold" json:"threshold"`
	Title     string `yaml:"title" json:"title"`
}

func Defaults() []Achievement {
	return []Achievement{
		{ID: "10kRoll", Threshold: 10000, Title: "Roll a 1 in 10,000"},
		{ID: "100kRoll", Threshold: 100000, Title: "Roll a 1 in 100,000"},
		{ID: "200kRoll", Threshold: 200000, Title: "Roll a 1 in 200,000"},
		{ID: "250kRoll", Threshold: 250000, Title: "Roll a 1 in 250,000"},
	}
}

type Engine struct {
	list []Achievement
}

// New 驗證成就清單：ID 唯一且非空，Threshold 為正且依宣告順序不遞減。
func New(list ...Achievement) (*Engine, error) {
	seen := make(map[string]struct{}, len(list))
	prev := 0
	for i, a := range list {
		if a.ID == "" {
			return nil, errs.Fatalf("achieve: #%d has empty id", i)
		}
		if _, dup := seen[a.ID]; dup {
			return nil, errs.Fatalf("achieve: duplicate id %q", a.ID)
		}
		if a.Threshold <= 0 {
			return nil, errs.Fatalf("achieve: %q threshold must be positive", a.ID)
		}
		if a.Threshold < prev {
			return nil, errs.Fatalf("achieve: %q threshold %d decreases from %d", a.ID, a.Threshold, prev)
		}
		seen[a.ID] = struct{}{}
		prev = a.Threshold
	}
	return &Engine{list: append([]Achievement(nil), list...)}, nil
}

func (e *Engine) List() []Achievement {
	return append([]Achievement(nil), e.list...)
}

// Check 以抽中的 t 評估所有成就，回傳更新後的集合與本次新解鎖的成就（宣告順序）。
// set 不會被修改；無新解鎖時 updated 仍是 set 的副本。
func (e *Engine) Check(t table.Tier, set map[string]bool) (updated map[string]bool, newly []Achievement) {
	updated = make(map[string]bool, len(set)+len(e.list))
	maps.Copy(updated, set)
	for _, a := range e.list {
		if t.Odds >= a.Threshold && !updated[a.ID] {
			updated[a.ID] = true
			newly = append(newly, a)
		}
	}
	return updated, newly
}
