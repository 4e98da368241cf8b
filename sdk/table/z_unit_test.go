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
package table

import (
	"errors"
	"testing"

	"github.com/zintix-labs/rnglab/errs"
)

func TestNewRejectsInvalid(t *testing.T) {
	bad := map[string][]Tier{
		"empty":     nil,
		"blank":     {{Name: " ", Odds: 2}},
		"zero odds": {{Name: "A", Odds: 0}},
		"negative":  {{Name: "A", Odds: -4}},
		"duplicate": {{Name: "A", Odds: 2}, {Name: "A", Odds: 4}},
	}
	for name, tiers := range bad {
		_, err := New(tiers)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if errs.Level(err) != errs.Fatal {
			t.Fatalf("%s: expected fatal level, got %v", name, err)
		}
		var e *errs.E
		if !errors.As(err, &e) {
			t.Fatalf("%s: expected *errs.E", name)
		}
	}
}

func TestClassicTable(t *testing.T) {
	tb := MustNew(Classic())
	if tb.Len() != 10 {
		t.Fatalf("expected 10 tiers, got %d", tb.Len())
	}
	if tb.Last().Name != "Apollo" {
		t.Fatalf("unexpected last tier %q", tb.Last().Name)
	}
	m, ok := tb.Lookup("Mythic")
	if !ok || m.Odds != 10000 || m.Color != "yellow" {
		t.Fatalf("unexpected Mythic: %+v", m)
	}
	if tb.Index("Rare") != 2 || tb.Index("nope") != -1 {
		t.Fatalf("unexpected index")
	}
	if got := m.BaseWeight(); got != 1.0/10000 {
		t.Fatalf("unexpected base weight %v", got)
	}
}

func TestTiersReturnsCopy(t *testing.T) {
	tb := MustNew(Classic())
	ts := tb.Tiers()
	ts[0].Name = "changed"
	if tb.At(0).Name != "Common" {
		t.Fatalf("table mutated through Tiers()")
	}
}
