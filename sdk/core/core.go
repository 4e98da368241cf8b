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

package core

// Source 是抽卡取樣唯一需要的能力：回傳 [0,1) 的浮點亂數。
//
// 測試可直接以固定序列實作 Source，以驗證抽選邊界。
type Source interface {
	Float64() float64
}

// PRNG 定義 Core 所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。Float64 的精度由實作決定。
type RAND interface {
	Source
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
}

// Factory 以 seed 建立 PRNG。
//
// 合約：同一實作同一版本下 New(seed) 必須是決定性的，
// 相同 seed 產生相同的輸出序列。Session 與 Simulator 的子 seed
// 都由 Lab 的 baseSeed 派生，內部不會呼叫不帶 seed 的建構。
type Factory interface {
	New(int64) PRNG
}

// DefaultFactory 以 PCG64 實作 Factory。
type DefaultFactory struct{}

func (d *DefaultFactory) New(seed int64) PRNG {
	return newPCG64WithSeed(seed)
}

func Default() *DefaultFactory {
	return &DefaultFactory{}
}

// Core 封裝 PRNG，並提供常用取樣工具。
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}

// Chance 以機率 p 回傳 true；p <= 0 恆為 false，p >= 1 恆為 true。
func (c *Core) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return c.Float64() < p
}
