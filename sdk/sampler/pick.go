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
package sampler

import "github.com/zintix-labs/rnglab/sdk/core"

// PickFloat 以累減走訪 (cumulative walk) 從浮點權重中抽出一個索引。
//
// 流程：
//  1. total = sum(weights)，負值與 NaN 權重視為 0。
//  2. u = src.Float64() * total，u ∈ [0,total)。
//  3. 依序 u -= w[i]，第一個使 u <= 0 的 i 即為結果。
//  4. 浮點誤差使走訪結束仍未命中時，回傳最後一個索引。
//
// 權重不需正規化，走訪順序即 weights 順序。
// 熱路徑只用哨兵值：weights 為空回傳 -1。
func PickFloat[T Floaters](src core.Source, weights []T) int {
	n := len(weights)
	if n == 0 {
		return -1
	}
	total := Total(weights)
	if total <= 0 {
		return n - 1
	}
	u := src.Float64() * total
	for i, w := range weights {
		u -= clean(w)
		if u <= 0 {
			return i
		}
	}
	return n - 1
}

// Total 回傳權重總和，負值與 NaN 不計入。
func Total[T Floaters](weights []T) float64 {
	total := 0.0
	for _, w := range weights {
		total += clean(w)
	}
	return total
}

// Normalize 回傳 weights / total；total 為 0 時回傳全 0。
func Normalize[T Floaters](weights []T) []float64 {
	out := make([]float64, len(weights))
	total := Total(weights)
	if total <= 0 {
		return out
	}
	for i, w := range weights {
		out[i] = clean(w) / total
	}
	return out
}

func clean[T Floaters](w T) float64 {
	f := float64(w)
	if !(f > 0) {
		return 0
	}
	return f
}
