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
package state

import (
	"context"
	"errors"
	"testing"

	"github.com/zintix-labs/rnglab/errs"
)

type mapStore struct {
	data   map[string][]byte
	getErr error
}

func (m *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *mapStore) Set(_ context.Context, key string, value []byte) error {
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	return nil
}

func TestLoadMissingKeysIsEmpty(t *testing.T) {
	s, err := Load(context.Background(), &mapStore{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Stats == nil || s.Pity == nil || s.Achievements == nil {
		t.Fatalf("maps should be initialized: %+v", s)
	}
	if s.Stats.Total() != 0 || s.Economy != (Economy{}) {
		t.Fatalf("expected zero state, got %+v", s)
	}
}

func TestSaveAllLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := &mapStore{}
	in := Empty()
	in.Stats["Common"] = 3
	in.Stats["Rare"] = 1
	in.Pity["Mythic"] = 4
	in.Economy = Economy{RollCount: 4}
	in.Achievements["10kRoll"] = true
	if err := SaveAll(ctx, st, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := Load(ctx, st)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Stats["Common"] != 3 || out.Pity["Mythic"] != 4 || out.Economy.RollCount != 4 || !out.Achievements["10kRoll"] {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if string(st.data[KeyEconomy]) != `{"roll_count":4,"spent":0,"buff_owned":false,"buff_active":false}` {
		t.Fatalf("unexpected economy blob %s", st.data[KeyEconomy])
	}
}

func TestLoadFailureDegrades(t *testing.T) {
	_, err := Load(context.Background(), &mapStore{getErr: errors.New("io")})
	if !errors.Is(err, errs.ErrPersistenceUnavailable) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	bad := &mapStore{data: map[string][]byte{KeyStats: []byte("{not json")}}
	s, err := Load(context.Background(), bad)
	if !errors.Is(err, errs.ErrPersistenceUnavailable) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if s.Stats == nil || s.Stats.Total() != 0 {
		t.Fatalf("expected empty state on failure")
	}
}

func TestReconciled(t *testing.T) {
	s := Empty()
	s.Stats["Common"] = 6000
	s.Economy = Economy{RollCount: 1000, Spent: 5000, BuffOwned: true, BuffActive: true}
	if _, fixed := s.Reconciled(); fixed {
		t.Fatalf("consistent economy should not be touched")
	}
	s.Economy.RollCount = 0
	got, fixed := s.Reconciled()
	if !fixed || got.Economy.RollCount != 1000 || got.Economy.Spent != 5000 {
		t.Fatalf("unexpected reconcile %+v", got.Economy)
	}
	s.Economy = Economy{RollCount: 9, Spent: 99999}
	got, _ = s.Reconciled()
	if got.Economy.RollCount != 0 {
		t.Fatalf("balance must not go negative, got %d", got.Economy.RollCount)
	}
}

func TestPurchaseBuff(t *testing.T) {
	e := Economy{RollCount: 4999}
	got, err := e.PurchaseBuff(5000)
	if !errors.Is(err, errs.ErrInsufficientFunds) || got != e {
		t.Fatalf("4999 should be rejected unchanged, got %+v %v", got, err)
	}
	e.RollCount = 5000
	got, err = e.PurchaseBuff(5000)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if got.RollCount != 0 || got.Spent != 5000 || !got.BuffActive || !got.BuffOwned {
		t.Fatalf("unexpected economy %+v", got)
	}
	again, err := got.PurchaseBuff(5000)
	if !errors.Is(err, errs.ErrBuffActive) || again != got {
		t.Fatalf("second purchase should be rejected without charge")
	}
	if got.Multiplier(1.2) != 1.2 || e.Multiplier(1.2) != 1 {
		t.Fatalf("unexpected multiplier")
	}
}

func TestToggleBuff(t *testing.T) {
	e := Economy{BuffOwned: true, BuffActive: true}
	if _, err := e.ToggleBuff(false); !errors.Is(err, errs.ErrBuffLocked) {
		t.Fatalf("non-toggleable table should lock, got %v", err)
	}
	off, err := e.ToggleBuff(true)
	if err != nil || off.BuffActive {
		t.Fatalf("expected buff off, got %+v %v", off, err)
	}
	on, _ := off.ToggleBuff(true)
	if !on.BuffActive {
		t.Fatalf("expected buff back on")
	}
	if _, err := (Economy{}).ToggleBuff(true); !errors.Is(err, errs.ErrBuffLocked) {
		t.Fatalf("unowned buff should lock")
	}

	owned := Economy{RollCount: 6000, Spent: 5000, BuffOwned: true}
	re, err := owned.PurchaseBuff(5000)
	if err != nil || !re.BuffActive || re.RollCount != 6000 || re.Spent != 5000 {
		t.Fatalf("owned buff should re-activate for free, got %+v %v", re, err)
	}
}
