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
// Package memstore 行程內的 key-value 儲存，供測試與降級後的記憶體模式使用。
package memstore

import (
	"context"
	"slices"
	"sync"

	"github.com/zintix-labs/rnglab/state"
)

type Store struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

func New() *Store {
	return &Store{data: make(map[string]map[string][]byte)}
}

// Scope 回傳 namespace 範圍內的 state.Store。
func (s *Store) Scope(namespace string) state.Store {
	return &scoped{root: s, ns: namespace}
}

// Namespaces 回傳已寫入過的 namespace（排序後）。
func (s *Store) Namespaces() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.data))
	for ns := range s.data {
		out = append(out, ns)
	}
	slices.Sort(out)
	return out
}

func (s *Store) get(ns, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[ns][key]
	if !ok {
		return nil, state.ErrNotFound
	}
	return slices.Clone(v), nil
}

func (s *Store) set(ns, key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.data[ns]
	if !ok {
		m = make(map[string][]byte)
		s.data[ns] = m
	}
	m[key] = slices.Clone(value)
}

type scoped struct {
	root *Store
	ns   string
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.root.get(s.ns, key)
}

func (s *scoped) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.root.set(s.ns, key, value)
	return nil
}
