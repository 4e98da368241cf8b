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

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/rnglab"
	"github.com/zintix-labs/rnglab/demo/demo_configs"
	"github.com/zintix-labs/rnglab/dto"
	"github.com/zintix-labs/rnglab/sdk/core"
	"github.com/zintix-labs/rnglab/server/logger"
	"github.com/zintix-labs/rnglab/server/netsvr"
	v1 "github.com/zintix-labs/rnglab/server/api/v1"
	"github.com/zintix-labs/rnglab/server/svrcfg"
	"github.com/zintix-labs/rnglab/spec"
	"github.com/zintix-labs/rnglab/state"
	"github.com/zintix-labs/rnglab/store/memstore"
)

type testServer struct {
	h   http.Handler
	ms  *memstore.Store
	rt  *rnglab.Runtime
	cfg *svrcfg.SvrCfg
}

func newTestServer(t *testing.T, tid spec.TID) *testServer {
	t.Helper()
	lab, err := rnglab.NewWithSeed(core.Default(), rnglab.Configs(demo_configs.FS), 20250101)
	if err != nil {
		t.Fatalf("new lab: %v", err)
	}
	if err := lab.RegisterAll(); err != nil {
		t.Fatalf("register: %v", err)
	}
	lab.Freeze()
	ms := memstore.New()
	cfg := &svrcfg.SvrCfg{
		Log:      logger.NewDefaultLogger(logger.ModeSilence),
		Lab:      lab,
		Table:    tid,
		Store:    ms,
		FastRoll: true,
	}
	if err := cfg.Valid(); err != nil {
		t.Fatalf("valid: %v", err)
	}
	svr := netsvr.NewChiServer("")
	rt, err := RegisterRoutes(svr, cfg)
	if err != nil {
		t.Fatalf("register routes: %v", err)
	}
	t.Cleanup(rt.Close)
	return &testServer{h: svr.Handler(), ms: ms, rt: rt, cfg: cfg}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.h.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v (body=%s)", v, err, w.Body.String())
	}
	return v
}

func TestTables(t *testing.T) {
	ts := newTestServer(t, 4)
	w := ts.do(t, http.MethodGet, "/v1/tables", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	v := decode[struct {
		Bound  spec.TID `json:"bound"`
		Tables []struct {
			Name string `json:"name"`
		} `json:"tables"`
	}](t, w)
	if v.Bound != 4 || len(v.Tables) != 4 {
		t.Fatalf("unexpected tables: %+v", v)
	}
}

func TestRollAndState(t *testing.T) {
	ts := newTestServer(t, 4)
	for i := 0; i < 3; i++ {
		w := ts.do(t, http.MethodPost, "/v1/roll", `{"uid":"alice"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("roll status: %d body=%s", w.Code, w.Body.String())
		}
		res := decode[dto.RollResult](t, w)
		if !res.Accepted || res.Tier == nil || res.Seq != i+1 {
			t.Fatalf("unexpected roll result: %+v", res)
		}
		if len(res.Fake) != 0 {
			t.Fatalf("fast roll should skip fake draws")
		}
	}

	w := ts.do(t, http.MethodGet, "/v1/state?uid=alice", "")
	if w.Code != http.StatusOK {
		t.Fatalf("state status: %d", w.Code)
	}
	v := decode[dto.StateView](t, w)
	if v.TotalRolls != 3 || v.RollCount != 3 || v.TableName != "apollo" {
		t.Fatalf("unexpected state: %+v", v)
	}

	// 另一個使用者互不影響
	w = ts.do(t, http.MethodGet, "/v1/state?uid=bob", "")
	if v := decode[dto.StateView](t, w); v.TotalRolls != 0 {
		t.Fatalf("bob should start empty: %+v", v)
	}
	if got := ts.ms.Namespaces(); len(got) == 0 || got[0] != "alice" {
		t.Fatalf("alice should have persisted state: %v", got)
	}
}

func TestRollRequiresUID(t *testing.T) {
	ts := newTestServer(t, 4)
	if w := ts.do(t, http.MethodPost, "/v1/roll", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if w := ts.do(t, http.MethodGet, "/v1/roll", ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestOdds(t *testing.T) {
	ts := newTestServer(t, 4)
	w := ts.do(t, http.MethodGet, "/v1/odds?uid=alice", "")
	v := decode[dto.OddsView](t, w)
	if len(v.Rows) != 10 {
		t.Fatalf("apollo has 10 tiers, got %d", len(v.Rows))
	}
	sum := 0.0
	for _, r := range v.Rows {
		sum += r.Probability
	}
	if sum < 0.999999 || sum > 1.000001 {
		t.Fatalf("probabilities should sum to 1, got %f", sum)
	}
}

func seedRich(t *testing.T, ms *memstore.Store, uid string, rolls int) {
	t.Helper()
	s := state.Empty()
	s.Stats["Common"] = rolls
	s.Economy.RollCount = rolls
	if err := state.SaveAll(context.Background(), ms.Scope(uid), s); err != nil {
		t.Fatalf("seed state: %v", err)
	}
}

func TestBuffPurchase(t *testing.T) {
	ts := newTestServer(t, 4)
	seedRich(t, ts.ms, "poor", 4999)
	seedRich(t, ts.ms, "rich", 5000)

	w := ts.do(t, http.MethodPost, "/v1/buff", `{"uid":"poor"}`)
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", w.Code)
	}
	if res := decode[dto.BuffResult](t, w); res.Accepted || res.Economy.RollCount != 4999 {
		t.Fatalf("rejected purchase must not charge: %+v", res)
	}

	w = ts.do(t, http.MethodPost, "/v1/buff", `{"uid":"rich"}`)
	res := decode[dto.BuffResult](t, w)
	if w.Code != http.StatusOK || !res.Accepted || !res.Economy.BuffActive || res.Economy.RollCount != 0 {
		t.Fatalf("unexpected purchase: %d %+v", w.Code, res)
	}

	// 已啟用不重複扣款
	w = ts.do(t, http.MethodPost, "/v1/buff", `{"uid":"rich"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second purchase should be rejected, got %d", w.Code)
	}
	// apollo 不可切換
	w = ts.do(t, http.MethodPost, "/v1/buff/toggle", `{"uid":"rich"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("toggle should be locked, got %d", w.Code)
	}
}

func TestBuffToggle(t *testing.T) {
	ts := newTestServer(t, 1)
	seedRich(t, ts.ms, "carol", 5000)
	if w := ts.do(t, http.MethodPost, "/v1/buff", `{"uid":"carol"}`); w.Code != http.StatusOK {
		t.Fatalf("purchase: %d", w.Code)
	}
	w := ts.do(t, http.MethodPost, "/v1/buff/toggle", `{"uid":"carol"}`)
	res := decode[dto.BuffResult](t, w)
	if w.Code != http.StatusOK || res.Economy.BuffActive || !res.Economy.BuffOwned {
		t.Fatalf("toggle off: %d %+v", w.Code, res)
	}
	w = ts.do(t, http.MethodPost, "/v1/buff/toggle", `{"uid":"carol"}`)
	if res := decode[dto.BuffResult](t, w); !res.Economy.BuffActive || res.Economy.Spent != 5000 {
		t.Fatalf("toggle on must be free: %+v", res)
	}
}

func TestSim(t *testing.T) {
	ts := newTestServer(t, 4)
	w := ts.do(t, http.MethodGet, "/v1/sim?rolls=20000&workers=2&seed=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("sim status: %d body=%s", w.Code, w.Body.String())
	}
	a := decode[v1.SimResponse](t, w)
	if a.Seed != 5 || a.Report == nil || a.Report.Summary.Rolls != 40000 {
		t.Fatalf("unexpected sim: %+v", a.Report.Summary)
	}
	w = ts.do(t, http.MethodPost, "/v1/sim", `{"rolls":20000,"workers":2,"seed":5}`)
	b := decode[v1.SimResponse](t, w)
	if b.Report.Tiers[0].Count != a.Report.Tiers[0].Count {
		t.Fatalf("same seed should reproduce the report")
	}
	if w := ts.do(t, http.MethodGet, "/v1/sim?rolls=0", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("zero rolls should be 400, got %d", w.Code)
	}
}

func TestSimByCfg(t *testing.T) {
	ts := newTestServer(t, 4)
	cfg := `{"table_name":"coin","table_id":77,"tiers":[{"name":"Heads","color":"gray","odds":2},{"name":"Tails","color":"blue","odds":2}]}`
	w := ts.do(t, http.MethodPost, "/v1/simbycfg", `{"rolls":10000,"seed":3,"cfg":`+cfg+`}`)
	if w.Code != http.StatusOK {
		t.Fatalf("simbycfg status: %d body=%s", w.Code, w.Body.String())
	}
	v := decode[v1.SimResponse](t, w)
	if v.Report.Summary.TableName != "coin" || len(v.Report.Tiers) != 2 {
		t.Fatalf("unexpected report: %+v", v.Report.Summary)
	}
	bad := `{"rolls":10,"cfg":{"table_name":"x","tiers":[]}}`
	if w := ts.do(t, http.MethodPost, "/v1/simbycfg", bad); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid cfg should be 400, got %d", w.Code)
	}
}

func TestClosedRuntime(t *testing.T) {
	ts := newTestServer(t, 4)
	ts.rt.Close()
	if w := ts.do(t, http.MethodPost, "/v1/roll", `{"uid":"alice"}`); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("closed runtime should be 503, got %d", w.Code)
	}
}

func TestSimStopsWhenClientGone(t *testing.T) {
	ts := newTestServer(t, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := httptest.NewRequest(http.MethodGet, "/v1/sim?rolls=10000000&workers=4", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	ts.h.ServeHTTP(w, r)
	if w.Code != http.StatusRequestTimeout {
		t.Fatalf("canceled sim should answer 408, got %d body=%s", w.Code, w.Body.String())
	}
}
