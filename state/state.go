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
// Package state 定義跨 session 保存的抽卡狀態與其載入/寫回規則。
//
// 四個部分（stats/pity/economy/achievements）於 session 開始時載入一次，
// 只由 commit 修改，每次修改後立即寫回，不批次、不回滾。
package state

import (
	"context"
	"encoding/json"
	"errors"
	"maps"

	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/sdk/pity"
)

// RollStats 各 Tier 的真實抽卡次數。
//
// 不在目前表格內的 Tier（切換表格留下的歷史）保留在 blob 中，
// 計入 Total，但不出現在表格範圍的顯示裡。
type RollStats map[string]int

// Total 所有 Tier 次數總和。
func (s RollStats) Total() int {
	n := 0
	for _, v := range s {
		n += v
	}
	return n
}

// TotalOf 只加總 names 內的 Tier。
func (s RollStats) TotalOf(names []string) int {
	n := 0
	for _, name := range names {
		n += s[name]
	}
	return n
}

func (s RollStats) Clone() RollStats {
	out := make(RollStats, len(s))
	maps.Copy(out, s)
	return out
}

// Achievements 已解鎖的成就 id。
type Achievements map[string]bool

func (a Achievements) Clone() Achievements {
	out := make(Achievements, len(a))
	maps.Copy(out, a)
	return out
}

// State 一個使用者的完整狀態。
type State struct {
	Stats        RollStats     `json:"stats" yaml:"stats"`
	Pity         pity.Counters `json:"pity" yaml:"pity"`
	Economy      Economy       `json:"economy" yaml:"economy"`
	Achievements Achievements  `json:"achievements" yaml:"achievements"`
}

// Empty 回傳零值但 map 已初始化的 State。
func Empty() State {
	return State{
		Stats:        RollStats{},
		Pity:         pity.Counters{},
		Achievements: Achievements{},
	}
}

// Clone 深拷貝。
func (s State) Clone() State {
	return State{
		Stats:        s.Stats.Clone(),
		Pity:         s.Pity.Clone(),
		Economy:      s.Economy,
		Achievements: s.Achievements.Clone(),
	}
}

// Reconciled 檢查 RollCount + Spent == Stats.Total()；不一致時以 stats 為準重算餘額。
// 回傳修正後的 State 與是否有修正。
func (s State) Reconciled() (State, bool) {
	total := s.Stats.Total()
	if s.Economy.RollCount+s.Economy.Spent == total {
		return s, false
	}
	s.Economy.RollCount = max(0, total-s.Economy.Spent)
	return s, true
}

// Load 從 store 載入四個部分，缺少的鍵視為空值。
//
// 任一讀取或解碼失敗即回傳 Empty() 與 ErrPersistenceUnavailable，
// 呼叫端應改用記憶體模式，避免以空狀態覆寫仍然存在的資料。
func Load(ctx context.Context, st Store) (State, error) {
	s := Empty()
	parts := []struct {
		key string
		dst any
	}{
		{KeyStats, &s.Stats},
		{KeyPity, &s.Pity},
		{KeyEconomy, &s.Economy},
		{KeyAchievements, &s.Achievements},
	}
	for _, p := range parts {
		raw, err := st.Get(ctx, p.key)
		if errors.Is(err, ErrNotFound) || (err == nil && len(raw) == 0) {
			continue
		}
		if err != nil {
			return Empty(), errs.Kind(errs.ErrPersistenceUnavailable, err, "load "+p.key)
		}
		if err := json.Unmarshal(raw, p.dst); err != nil {
			return Empty(), errs.Kind(errs.ErrPersistenceUnavailable, err, "decode "+p.key)
		}
	}
	// JSON null 會把 map 解成 nil
	if s.Stats == nil {
		s.Stats = RollStats{}
	}
	if s.Pity == nil {
		s.Pity = pity.Counters{}
	}
	if s.Achievements == nil {
		s.Achievements = Achievements{}
	}
	return s, nil
}

// Save 將 v 以 JSON 寫入 key。
func Save(ctx context.Context, st Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errs.Wrap(err, "state: marshal "+key)
	}
	if err := st.Set(ctx, key, raw); err != nil {
		return errs.Kind(errs.ErrPersistenceUnavailable, err, "save "+key)
	}
	return nil
}

// SaveAll 依 stats、pity、economy、achievements 的順序寫回，遇錯即停。
func SaveAll(ctx context.Context, st Store, s State) error {
	for _, kv := range []struct {
		key string
		v   any
	}{
		{KeyStats, s.Stats},
		{KeyPity, s.Pity},
		{KeyEconomy, s.Economy},
		{KeyAchievements, s.Achievements},
	} {
		if err := Save(ctx, st, kv.key, kv.v); err != nil {
			return err
		}
	}
	return nil
}
