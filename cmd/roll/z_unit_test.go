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

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zintix-labs/rnglab/sdk/table"
)

func TestAnsi(t *testing.T) {
	if ansi("Gray") != "\033[90m" {
		t.Fatalf("named colors are case-insensitive")
	}
	if ansi("#ff4500") != "\033[38;2;255;69;0m" {
		t.Fatalf("unexpected hex color: %q", ansi("#ff4500"))
	}
	if ansi("#zzzzzz") != "" || ansi("teal") != "" {
		t.Fatalf("unknown colors should not paint")
	}
	if paint(table.Tier{Name: "X", Color: "teal"}, "X") != "X" {
		t.Fatalf("unknown color should leave text as is")
	}
}

func TestRunShowsUndiscovered(t *testing.T) {
	dir := t.TempDir()
	cfg := &config{
		table:   "apollo",
		store:   "file",
		path:    filepath.Join(dir, "state"),
		user:    "t",
		n:       3,
		fast:    true,
		logMode: "silence",
	}
	var buf bytes.Buffer
	if err := run(context.Background(), cfg, &buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Total rolls: 3") || !strings.Contains(out, hidden) {
		t.Fatalf("unexpected output: %s", out)
	}
	if strings.Contains(out, "Apollo ") {
		t.Fatalf("the 1 in 250,000 tier should still be hidden: %s", out)
	}

	// 第二次執行讀回同一份狀態
	buf.Reset()
	cfg.n = 0
	if err := run(context.Background(), cfg, &buf); err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if !strings.Contains(buf.String(), "Total rolls: 3") {
		t.Fatalf("state should persist across runs: %s", buf.String())
	}
}

func TestScreenStats(t *testing.T) {
	var buf bytes.Buffer
	sc := newScreen(&buf)
	s := buffText(false, false, false, 5000, 1.2, 4999, sc.p)
	if s != "Buff: costs 5,000 rolls (balance 4,999, -buy to purchase)" {
		t.Fatalf("unexpected buff text: %q", s)
	}
	if !strings.Contains(buffText(true, true, false, 5000, 1.2, 0, sc.p), "x1.2") {
		t.Fatalf("active buff should show the multiplier")
	}
	p := &cliPresenter{sc: sc}
	_ = p.FakeDraw(context.Background(), 0, table.Tier{Name: "Rare", Color: "blue", Odds: 16})
	if !strings.HasPrefix(buf.String(), "\r") || !strings.Contains(buf.String(), "Rare") {
		t.Fatalf("fake draw should overwrite in place: %q", buf.String())
	}
}
