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

package demo

import (
	"context"
	"testing"

	"github.com/zintix-labs/rnglab/store/memstore"
)

func TestNewServerConfig(t *testing.T) {
	cfg, err := NewServerConfig()
	if err != nil {
		t.Fatalf("new server config: %v", err)
	}
	defer cfg.Close()
	ts, err := cfg.Lab.Setting(cfg.Table)
	if err != nil || ts.TableName != "apollo" {
		t.Fatalf("expected apollo, got %v %v", ts, err)
	}
}

func TestDemoTables(t *testing.T) {
	cat, err := New()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if err := cat.RegisterAll(); err != nil {
		t.Fatalf("register: %v", err)
	}
	want := map[string]int{"classic": 7, "luminous": 8, "abyssal": 9, "apollo": 10}
	for name, n := range want {
		ts, err := cat.TableSettingByName(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if ts.Table().Len() != n {
			t.Fatalf("%s: expected %d tiers, got %d", name, n, ts.Table().Len())
		}
	}

	lab, err := NewLab()
	if err != nil {
		t.Fatalf("lab: %v", err)
	}
	s, err := lab.NewSession(context.Background(), ApolloID, memstore.New().Scope("demo"))
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if len(s.Probabilities()) != 10 {
		t.Fatalf("apollo should expose 10 probabilities")
	}
}
