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
package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/zintix-labs/rnglab/state"
)

func TestRoundTripAndIsolation(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := s.Scope("alice")
	b := s.Scope("bob")

	in := state.Empty()
	in.Stats["Common"] = 2
	in.Economy.RollCount = 2
	if err := state.SaveAll(ctx, a, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := state.Load(ctx, a)
	if err != nil || out.Stats["Common"] != 2 || out.Economy.RollCount != 2 {
		t.Fatalf("round trip mismatch: %+v %v", out, err)
	}
	if _, err := b.Get(ctx, state.KeyStats); !errors.Is(err, state.ErrNotFound) {
		t.Fatalf("namespaces should be isolated, got %v", err)
	}
	if ns := s.Namespaces(); len(ns) != 1 || ns[0] != "alice" {
		t.Fatalf("unexpected namespaces %v", ns)
	}
}

func TestValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	st := New().Scope("x")
	buf := []byte("abc")
	_ = st.Set(ctx, "k", buf)
	buf[0] = 'z'
	got, _ := st.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value aliased caller buffer: %s", got)
	}
}
