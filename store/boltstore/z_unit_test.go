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
package boltstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/zintix-labs/rnglab/state"
)

func TestRoundTripAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rnglab.bolt")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	a := s.Scope("alice")
	if _, err := a.Get(ctx, state.KeyPity); !errors.Is(err, state.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	in := state.Empty()
	in.Stats["Legendary"] = 2
	in.Pity["Mythic"] = 77
	in.Economy = state.Economy{RollCount: 2}
	if err := state.SaveAll(ctx, a, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	// last write wins
	in.Stats["Legendary"] = 3
	in.Economy.RollCount = 3
	if err := state.SaveAll(ctx, a, in); err != nil {
		t.Fatalf("save again: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	out, err := state.Load(ctx, s.Scope("alice"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Stats["Legendary"] != 3 || out.Pity["Mythic"] != 77 || out.Economy.RollCount != 3 {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if _, err := s.Scope("bob").Get(ctx, state.KeyStats); !errors.Is(err, state.ErrNotFound) {
		t.Fatalf("namespaces should be isolated, got %v", err)
	}
}
