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
package pity

import "testing"

func mustDefault(t *testing.T) *Engine {
	t.Helper()
	e, err := New(Defaults()...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestNewRejectsInvalidRules(t *testing.T) {
	if _, err := New(Rule{Tier: "A", Threshold: 0, Boost: 2}); err == nil {
		t.Fatalf("expected threshold error")
	}
	if _, err := New(Rule{Tier: "A", Threshold: 1, Boost: 0}); err == nil {
		t.Fatalf("expected boost error")
	}
	if _, err := New(Rule{Tier: "A", Threshold: 1, Boost: 2}, Rule{Tier: "A", Threshold: 3, Boost: 2}); err == nil {
		t.Fatalf("expected duplicate error")
	}
}

func TestMultiplierThreshold(t *testing.T) {
	e := mustDefault(t)
	if got := e.Multiplier("Mythic", Counters{"Mythic": 999}); got != 1 {
		t.Fatalf("below threshold expected 1, got %v", got)
	}
	if got := e.Multiplier("Mythic", Counters{"Mythic": 1000}); got != 100 {
		t.Fatalf("at threshold expected 100, got %v", got)
	}
	if got := e.Multiplier("Ultra Rare", Counters{"Ultra Rare": 5000}); got != 10 {
		t.Fatalf("above threshold expected 10, got %v", got)
	}
	if got := e.Multiplier("Common", Counters{"Common": 1 << 20}); got != 1 {
		t.Fatalf("untracked tier expected 1, got %v", got)
	}
}

func TestAdvanceResetWins(t *testing.T) {
	e := mustDefault(t)
	in := Counters{"Ultra Rare": 299, "Legendary": 10, "Mythic": 0}
	out := e.Advance(in, "Legendary")
	if out["Ultra Rare"] != 300 || out["Legendary"] != 0 || out["Mythic"] != 1 {
		t.Fatalf("unexpected counters %v", out)
	}
	if in["Ultra Rare"] != 299 || in["Legendary"] != 10 {
		t.Fatalf("input mutated: %v", in)
	}
	out = e.Advance(nil, "Common")
	for _, tier := range e.Tracked() {
		if out[tier] != 1 {
			t.Fatalf("expected %s=1 from empty counters, got %d", tier, out[tier])
		}
	}
}

func TestStepMatchesAdvance(t *testing.T) {
	e := mustDefault(t)
	c := Counters{"Legendary": 3}
	want := e.Advance(c, "Ultra Rare")
	e.Step(c, "Ultra Rare")
	for _, tier := range e.Tracked() {
		if c[tier] != want[tier] {
			t.Fatalf("%s: step=%d advance=%d", tier, c[tier], want[tier])
		}
	}
}

func TestProgress(t *testing.T) {
	e := mustDefault(t)
	p := e.Progress(Counters{"Ultra Rare": 300, "Mythic": 12})
	if len(p) != 3 {
		t.Fatalf("expected 3 progress rows, got %d", len(p))
	}
	if p[0].Tier != "Ultra Rare" || !p[0].Active || p[0].Threshold != 300 {
		t.Fatalf("unexpected row %+v", p[0])
	}
	if p[2].Count != 12 || p[2].Active {
		t.Fatalf("unexpected row %+v", p[2])
	}
}
