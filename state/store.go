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
package state

import (
	"context"
	"errors"
)

// 持久化鍵；值皆為 JSON blob。
const (
	KeyStats        = "stats"
	KeyPity         = "pity"
	KeyEconomy      = "economy"
	KeyAchievements = "achievements"
)

// ErrNotFound 鍵不存在；Load 將其視為空值而非錯誤。
var ErrNotFound = errors.New("state: key not found")

// Store 最小 key-value 介面，last-write-wins，不需交易。
//
// 實作見 store/memstore、store/filestore、store/sqlitestore、store/boltstore。
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Scoper 以 namespace 切分出獨立的 Store（一個使用者一個 namespace）。
type Scoper interface {
	Scope(namespace string) Store
}
