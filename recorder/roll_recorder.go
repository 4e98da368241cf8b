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
package recorder

import (
	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/sdk/sampler"
	"github.com/zintix-labs/rnglab/sdk/table"
	"github.com/zintix-labs/rnglab/spec"
	"github.com/zintix-labs/rnglab/stats"
)

// RollRecorder 抽卡紀錄員
//
// 熱路徑只累計整數（次數、間隔和、平方和），透過 Done 輸出統計報表。
// 一個 RollRecorder 只給一個 goroutine 使用；併發模擬時各自紀錄後 Merge。
type RollRecorder struct {
	TableName      string
	TableID        spec.TID
	Tiers          []table.Tier
	Buff           bool
	BuffMultiplier float64
	Rolls          int
	Counts         []int
	PityHits       []int
	GapN           []int
	GapSum         []int
	GapSqSum       []int
	MaxGap         []int
	since          []int // 各 Tier 距上次命中的抽數
}

func NewRollRecorder(ts *spec.TableSetting, buff bool) (*RollRecorder, error) {
	if ts == nil || ts.Table() == nil {
		return nil, errs.NewFatal("recorder: table setting not initialized")
	}
	n := ts.Table().Len()
	return &RollRecorder{
		TableName:      ts.TableName,
		TableID:        ts.TableID,
		Tiers:          ts.Table().Tiers(),
		Buff:           buff,
		BuffMultiplier: ts.Economy.BuffMultiplier,
		Counts:         make([]int, n),
		PityHits:       make([]int, n),
		GapN:           make([]int, n),
		GapSum:         make([]int, n),
		GapSqSum:       make([]int, n),
		MaxGap:         make([]int, n),
		since:          make([]int, n),
	}, nil
}

// Record 紀錄一次真實抽卡：idx 為表格位置，boosted 表示抽中時該 Tier 的保底倍率生效。
func (r *RollRecorder) Record(idx int, boosted bool) {
	r.Rolls++
	for i := range r.since {
		r.since[i]++
	}
	r.Counts[idx]++
	if boosted {
		r.PityHits[idx]++
	}
	gap := r.since[idx]
	r.GapN[idx]++
	r.GapSum[idx] += gap
	r.GapSqSum[idx] += gap * gap
	r.MaxGap[idx] = max(r.MaxGap[idx], gap)
	r.since[idx] = 0
}

// MergeRollRecorder 合併同一張表、同一 buff 設定的紀錄。
func MergeRollRecorder(rs []*RollRecorder) (*RollRecorder, error) {
	if len(rs) == 0 {
		return nil, errs.NewFatal("merge roll record err : empty input")
	}
	r0 := rs[0]
	out := &RollRecorder{
		TableName:      r0.TableName,
		TableID:        r0.TableID,
		Tiers:          r0.Tiers,
		Buff:           r0.Buff,
		BuffMultiplier: r0.BuffMultiplier,
		Counts:         make([]int, len(r0.Tiers)),
		PityHits:       make([]int, len(r0.Tiers)),
		GapN:           make([]int, len(r0.Tiers)),
		GapSum:         make([]int, len(r0.Tiers)),
		GapSqSum:       make([]int, len(r0.Tiers)),
		MaxGap:         make([]int, len(r0.Tiers)),
		since:          make([]int, len(r0.Tiers)),
	}
	for _, v := range rs {
		if v.TableID != r0.TableID || v.TableName != r0.TableName {
			return nil, errs.NewFatal("merge roll record err : different table")
		}
		if len(v.Tiers) != len(r0.Tiers) {
			return nil, errs.NewFatal("merge roll record err : different tiers")
		}
		if v.Buff != r0.Buff {
			return nil, errs.NewFatal("merge roll record err : different buff")
		}
		out.Rolls += v.Rolls
		for i := range v.Counts {
			out.Counts[i] += v.Counts[i]
			out.PityHits[i] += v.PityHits[i]
			out.GapN[i] += v.GapN[i]
			out.GapSum[i] += v.GapSum[i]
			out.GapSqSum[i] += v.GapSqSum[i]
			out.MaxGap[i] = max(out.MaxGap[i], v.MaxGap[i])
		}
	}
	return out, nil
}

// Done 產出尚未計算的報表；呼叫端再呼叫 RollReport.Done()。
func (r *RollRecorder) Done() *stats.RollReport {
	weights := make([]float64, len(r.Tiers))
	for i, t := range r.Tiers {
		weights[i] = t.BaseWeight()
	}
	base := sampler.Normalize(weights)
	rep := &stats.RollReport{
		Summary: &stats.SummaryReport{
			TableName:      r.TableName,
			TableID:        r.TableID,
			Rolls:          r.Rolls,
			Buff:           r.Buff,
			BuffMultiplier: r.BuffMultiplier,
		},
		Tiers: make([]*stats.TierReport, len(r.Tiers)),
	}
	for i, t := range r.Tiers {
		rep.Tiers[i] = &stats.TierReport{
			Name:     t.Name,
			Odds:     t.Odds,
			Count:    r.Counts[i],
			BaseRate: base[i],
			PityHits: r.PityHits[i],
			GapN:     r.GapN[i],
			GapSum:   r.GapSum[i],
			GapSqSum: r.GapSqSum[i],
			MaxGap:   r.MaxGap[i],
		}
	}
	return rep
}
