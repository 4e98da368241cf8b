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

package dto

import (
	"github.com/zintix-labs/rnglab"
	"github.com/zintix-labs/rnglab/corefmt"
	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/sdk/pity"
	"github.com/zintix-labs/rnglab/sdk/table"
	"github.com/zintix-labs/rnglab/spec"
	"github.com/zintix-labs/rnglab/state"
)

// TierView 顯示用的單一 Tier。從未抽中的 Tier 為未發現（Discovered=false），
// 呈現端應隱藏名稱。
type TierView struct {
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Odds        int     `json:"odds"`
	Count       int     `json:"count"`
	Discovered  bool    `json:"discovered"`
	Probability float64 `json:"probability,omitempty"` // 目前保底與 buff 下的抽中機率
}

type AchievementView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Threshold int    `json:"threshold"`
	Unlocked  bool   `json:"unlocked"`
}

// StateView 使用者在一張表上的完整狀態。
type StateView struct {
	UID            string            `json:"uid"`
	TableName      string            `json:"table"`
	TableID        spec.TID          `json:"tid"`
	TotalRolls     int               `json:"total_rolls"` // 表格範圍內的真實抽卡數
	RollCount      int               `json:"roll_count"`  // 可花費餘額
	Spent          int               `json:"spent"`
	BuffOwned      bool              `json:"buff_owned"`
	BuffActive     bool              `json:"buff_active"`
	BuffCost       int               `json:"buff_cost"`
	BuffMultiplier float64           `json:"buff_multiplier"`
	Toggleable     bool              `json:"toggleable"`
	Tiers          []TierView        `json:"tiers"`
	Pity           []pity.Progress   `json:"pity"`
	Achievements   []AchievementView `json:"achievements"`
	Degraded       bool              `json:"degraded"`
	CoreB64U       string            `json:"core_b64u,omitempty"`
}

// RollResult 一次抽卡的回應。Accepted=false 表示觸發被忽略（例如抽卡進行中），
// 此時 Tier 為零值。
type RollResult struct {
	UID      string            `json:"uid"`
	Accepted bool              `json:"accepted"`
	Reason   string            `json:"reason,omitempty"`
	Seq      int               `json:"seq,omitempty"`
	Tier     *TierView         `json:"tier,omitempty"`
	Fake     []string          `json:"fake,omitempty"`
	Unlocked []AchievementView `json:"unlocked,omitempty"`
	Degraded bool              `json:"degraded"`
}

// BuffResult 購買或切換 buff 的回應。
type BuffResult struct {
	UID      string        `json:"uid"`
	Accepted bool          `json:"accepted"`
	Reason   string        `json:"reason,omitempty"`
	Economy  state.Economy `json:"economy"`
}

type OddsRow struct {
	Name        string  `json:"name"`
	Odds        int     `json:"odds"`
	Probability float64 `json:"probability"`
}

// OddsView 目前保底與 buff 下的抽中機率（表格順序，總和為 1）。
type OddsView struct {
	UID        string          `json:"uid"`
	TableName  string          `json:"table"`
	BuffActive bool            `json:"buff_active"`
	Rows       []OddsRow       `json:"rows"`
	Pity       []pity.Progress `json:"pity"`
}

// NewStateView 由 Session 快照組出 StateView。
func NewStateView(s *rnglab.Session) (StateView, error) {
	if s == nil {
		return StateView{}, errs.NewWarn("session is nil")
	}
	ts := s.Setting()
	snap := s.Snapshot()
	probs := s.Probabilities()
	tb := s.Table()

	v := StateView{
		UID:            s.User(),
		TableName:      ts.TableName,
		TableID:        ts.TableID,
		TotalRolls:     snap.Stats.TotalOf(tb.Names()),
		RollCount:      snap.Economy.RollCount,
		Spent:          snap.Economy.Spent,
		BuffOwned:      snap.Economy.BuffOwned,
		BuffActive:     snap.Economy.BuffActive,
		BuffCost:       ts.Economy.BuffCost,
		BuffMultiplier: ts.Economy.BuffMultiplier,
		Toggleable:     ts.Economy.Toggleable,
		Tiers:          make([]TierView, tb.Len()),
		Pity:           s.Progress(),
		Degraded:       s.Degraded(),
	}
	for i, t := range tb.Tiers() {
		v.Tiers[i] = newTierView(t, snap.Stats[t.Name])
		v.Tiers[i].Probability = probs[i]
	}
	for _, a := range ts.AchieveEngine().List() {
		v.Achievements = append(v.Achievements, AchievementView{
			ID:        a.ID,
			Title:     a.Title,
			Threshold: a.Threshold,
			Unlocked:  snap.Achievements[a.ID],
		})
	}
	snapCore, err := s.CoreSnapshot()
	if err != nil {
		return StateView{}, errs.Wrap(err, "core snapshot failed")
	}
	v.CoreB64U = corefmt.EncodeBase64URL(snapCore)
	return v, nil
}

// NewRollResult 抽卡已提交後的回應；Tier 的次數取自 Outcome，為本次提交後的值。
func NewRollResult(uid string, out rnglab.Outcome) RollResult {
	tv := newTierView(out.Tier, out.Count)
	r := RollResult{
		UID:      uid,
		Accepted: true,
		Seq:      out.Seq,
		Tier:     &tv,
		Degraded: out.Degraded,
	}
	if len(out.Fake) > 0 {
		r.Fake = make([]string, len(out.Fake))
		for i, t := range out.Fake {
			r.Fake[i] = t.Name
		}
	}
	for _, a := range out.Unlocked {
		r.Unlocked = append(r.Unlocked, AchievementView{
			ID:        a.ID,
			Title:     a.Title,
			Threshold: a.Threshold,
			Unlocked:  true,
		})
	}
	return r
}

// Rejected 觸發被忽略時的回應（Warn 等級錯誤）。
func Rejected(uid string, err error) RollResult {
	return RollResult{UID: uid, Accepted: false, Reason: reason(err)}
}

func NewBuffResult(uid string, e state.Economy, err error) BuffResult {
	return BuffResult{UID: uid, Accepted: err == nil, Reason: reason(err), Economy: e}
}

func NewOddsView(s *rnglab.Session) OddsView {
	tb := s.Table()
	probs := s.Probabilities()
	v := OddsView{
		UID:        s.User(),
		TableName:  s.Setting().TableName,
		BuffActive: s.Snapshot().Economy.BuffActive,
		Rows:       make([]OddsRow, tb.Len()),
		Pity:       s.Progress(),
	}
	for i, t := range tb.Tiers() {
		v.Rows[i] = OddsRow{Name: t.Name, Odds: t.Odds, Probability: probs[i]}
	}
	return v
}

func newTierView(t table.Tier, count int) TierView {
	return TierView{
		Name:       t.Name,
		Color:      t.Color,
		Odds:       t.Odds,
		Count:      count,
		Discovered: count > 0,
	}
}

func reason(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := errs.AsErr(err); ok {
		return e.Message
	}
	return err.Error()
}
