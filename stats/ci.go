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

package stats

import "gonum.org/v1/gonum/stat/distuv"

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo" yaml:"Lo"`
	Hi float64 `json:"Hi" yaml:"Hi"`
}

// Contains 閉區間判斷。
func (c CI) Contains(p float64) bool { return c.Lo <= p && p <= c.Hi }

// rateInterval n 抽中命中 k 次的 Clopper-Pearson 區間，level 為信賴水準（0.95）。
// k 為 0 或 n 時對應端點固定在 0 / 1。
func rateInterval(k, n int, level float64) CI {
	if n <= 0 {
		return CI{0, 1}
	}
	tail := (1 - level) / 2
	ci := CI{Lo: 0, Hi: 1}
	if k > 0 {
		ci.Lo = distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}.Quantile(tail)
	}
	if k < n {
		ci.Hi = distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}.Quantile(1 - tail)
	}
	return ci
}
