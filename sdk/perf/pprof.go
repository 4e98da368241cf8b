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

// Package perf 替長時間模擬包上 pprof，輸出檔可直接給 go tool pprof 或 PGO 使用。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/zintix-labs/rnglab/errs"
)

// DefaultDir pprof 檔案寫入路徑
const DefaultDir = "build/profiling"

type Mode string

const (
	None   Mode = ""
	CPU    Mode = "cpu"
	Heap   Mode = "heap"
	Allocs Mode = "allocs"
)

// ParseMode 接受 ''、cpu、heap、allocs（不分大小寫）。
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case None, CPU, Heap, Allocs:
		return m, nil
	default:
		return None, errs.Warnf("unknown pprof mode: %q", s)
	}
}

// Profile 執行 exe，並依 mode 在 dir 寫出對應的 profile。
//
// 回傳寫出的檔案路徑（None 時為空字串）；exe 的錯誤優先回傳。
//
//	go run ./cmd/run -p cpu
//	go tool pprof build/profiling/cpu.pprof
func Profile(dir string, mode Mode, exe func() error) (string, error) {
	if mode == None {
		return "", exe()
	}
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errs.Wrap(err, "create pprof dir")
	}
	path := filepath.Join(dir, string(mode)+".pprof")

	switch mode {
	case CPU:
		return path, profileCPU(path, exe)
	case Heap:
		if err := exe(); err != nil {
			return "", err
		}
		// 盡量讓快照貼近最新狀態
		runtime.GC()
		return path, writeProfile(path, "heap")
	case Allocs:
		if err := exe(); err != nil {
			return "", err
		}
		return path, writeProfile(path, "allocs")
	default:
		return "", errs.Warnf("unknown pprof mode: %q", mode)
	}
}

func profileCPU(path string, exe func() error) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create cpu.pprof")
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// writeProfile heap 為 in-use 快照；allocs 為累積配置（搭配 -alloc_space 查看）。
func writeProfile(path, name string) error {
	prof := pprof.Lookup(name)
	if prof == nil {
		return errs.Fatalf("no %s profile", name)
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create "+name+".pprof")
	}
	defer f.Close()
	if err := prof.WriteTo(f, 0); err != nil {
		return errs.Wrap(err, "write "+name+" profile")
	}
	return nil
}
