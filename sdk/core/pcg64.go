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

// PCG64 演算法由 Melissa O'Neill 設計，這裡使用 math/rand/v2 的實作。

package core

import (
	r2 "math/rand/v2"
)

// PCG64 預設的亂數產生器；抽卡只需要 Float64，整數取樣不在此提供。
type PCG64 struct {
	rng *r2.PCG
}

// newPCG64WithSeed seed 先經 splitmix64 展開成兩個 64-bit 狀態，相鄰 seed 不會產生相近序列。
func newPCG64WithSeed(seed int64) *PCG64 {
	x := uint64(seed) ^ golden
	return &PCG64{rng: r2.NewPCG(splitmix64(x), splitmix64(x^0xDA942042E4DD58B5))}
}

func (r *PCG64) Uint64() uint64 { return r.rng.Uint64() }

// Float64 [0,1)，取高 53 bits。
func (r *PCG64) Float64() float64 {
	return float64(r.rng.Uint64()>>11) * 0x1p-53
}

// Snapshot 內部狀態（math/rand/v2 PCG 的 binary 格式，含 "pcg:" 前綴）。
func (r *PCG64) Snapshot() ([]byte, error) {
	return r.rng.MarshalBinary()
}

func (r *PCG64) Restore(data []byte) error {
	return r.rng.UnmarshalBinary(data)
}

const golden = 0x9e3779b97f4a7c15

func splitmix64(x uint64) uint64 {
	x += golden
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
