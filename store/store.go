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

// Package store 依名稱開啟狀態後端，供 cmd 與 server 組裝使用。
package store

import (
	"io"
	"strings"

	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/state"
	"github.com/zintix-labs/rnglab/store/boltstore"
	"github.com/zintix-labs/rnglab/store/filestore"
	"github.com/zintix-labs/rnglab/store/memstore"
	"github.com/zintix-labs/rnglab/store/sqlitestore"
)

// Kind 後端種類。
type Kind string

const (
	Memory Kind = "memory"
	File   Kind = "file"
	SQLite Kind = "sqlite"
	Bolt   Kind = "bolt"
)

// Kinds 支援的後端（顯示用）。
func Kinds() []Kind { return []Kind{Memory, File, SQLite, Bolt} }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open 依 kind 開啟後端；path 對 file 是目錄，對 sqlite/bolt 是檔案，memory 忽略。
// 回傳的 io.Closer 必須在程式結束前關閉。
func Open(kind Kind, path string) (state.Scoper, io.Closer, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(string(kind)))) {
	case Memory, "":
		return memstore.New(), nopCloser{}, nil
	case File:
		if path == "" {
			return nil, nil, errs.NewFatal("file store requires a directory path")
		}
		s, err := filestore.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case SQLite:
		if path == "" {
			return nil, nil, errs.NewFatal("sqlite store requires a file path")
		}
		s, err := sqlitestore.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case Bolt:
		if path == "" {
			return nil, nil, errs.NewFatal("bolt store requires a file path")
		}
		s, err := boltstore.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, errs.Fatalf("unknown store kind: %q", kind)
	}
}
