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
package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zintix-labs/rnglab/state"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := Open(root)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	st := s.Scope("user/1")
	if _, err := st.Get(ctx, state.KeyStats); !errors.Is(err, state.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	in := state.Empty()
	in.Stats["Mythic"] = 1
	in.Pity["Ultra Rare"] = 12
	in.Economy.RollCount = 1
	in.Achievements["10kRoll"] = true
	if err := state.SaveAll(ctx, st, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	reopened, err := Open(root)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	out, err := state.Load(ctx, reopened.Scope("user/1"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Stats["Mythic"] != 1 || out.Pity["Ultra Rare"] != 12 || !out.Achievements["10kRoll"] {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if _, err := os.Stat(filepath.Join(root, "user%2F1", "stats.json")); err != nil {
		t.Fatalf("expected escaped namespace dir: %v", err)
	}
}

func TestDotNamespacesStayInsideRoot(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	root := filepath.Join(base, "data")
	s, err := Open(root)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, ns := range []string{"..", ".", ".hidden"} {
		if err := s.Scope(ns).Set(ctx, state.KeyStats, []byte(`{}`)); err != nil {
			t.Fatalf("set %q: %v", ns, err)
		}
	}
	if _, err := os.Stat(filepath.Join(base, "stats.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf(`".." wrote outside root: %v`, err)
	}
	if _, err := os.Stat(filepath.Join(root, "stats.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf(`"." wrote into root itself: %v`, err)
	}
	for _, dir := range []string{"%2E.", "%2E", "%2Ehidden"} {
		if _, err := os.Stat(filepath.Join(root, dir, "stats.json")); err != nil {
			t.Fatalf("expected namespace dir %s: %v", dir, err)
		}
	}
	if escape("%2E.") == escape("..") {
		t.Fatalf("escaped names must not collide")
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected error for blank path")
	}
}
