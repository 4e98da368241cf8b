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
// Package drawer 組合稀有度表、保底與 buff，完成一次加權抽選。
//
//	weight(t) = (1/t.Odds) * pity.Multiplier(t, counters) * buff
//
// 真實抽卡與假抽卡共用 Draw；Drawer 不持有狀態，也不碰持久化。
package drawer

import (
	"math"

	"github.com/zintix-labs/rnglab/sdk/core"
	"github.com/zintix-labs/rnglab/sdk/pity"
	"github.com/zintix-labs/rnglab/sdk/sampler"
	"github.com/zintix-labs/rnglab/sdk/table"
)

type Drawer struct {
	table *table.Table
	pity  *pity.Engine
}

// New 建立 Drawer；p 為 nil 時不套用保底。
func New(t *table.Table, p *pity.Engine) *Drawer {
	if p == nil {
		p, _ = pity.New()
	}
	return &Drawer{table: t, pity: p}
}

func (d *Drawer) Table() *table.Table { return d.table }

func (d *Drawer) Pity() *pity.Engine { return d.pity }

// Weights 依表格順序回傳每個 Tier 的有效權重。
// buff <= 0 或 NaN 視為 1。
func (d *Drawer) Weights(c pity.Counters, buff float64) []float64 {
	buff = sanitize(buff)
	out := make([]float64, d.table.Len())
	for i := range out {
		t := d.table.At(i)
		out[i] = t.BaseWeight() * d.pity.Multiplier(t.Name, c) * buff
	}
	return out
}

// Probabilities 回傳 weight/total，總和為 1。
func (d *Drawer) Probabilities(c pity.Counters, buff float64) []float64 {
	return sampler.Normalize(d.Weights(c, buff))
}

// Draw 以 src 抽出一個 Tier，永不失敗（浮點誤差回退到最後一個 Tier）。
func (d *Drawer) Draw(src core.Source, c pity.Counters, buff float64) table.Tier {
	return d.table.At(d.DrawIndex(src, c, buff))
}

// DrawIndex 同 Draw，回傳表格位置。
func (d *Drawer) DrawIndex(src core.Source, c pity.Counters, buff float64) int {
	i := sampler.PickFloat(src, d.Weights(c, buff))
	if i < 0 {
		return d.table.Len() - 1
	}
	return i
}

func sanitize(buff float64) float64 {
	if math.IsNaN(buff) || math.IsInf(buff, 0) || buff <= 0 {
		return 1
	}
	return buff
}
