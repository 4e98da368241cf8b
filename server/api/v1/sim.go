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

package v1

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/rnglab"
	"github.com/zintix-labs/rnglab/dto"
	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/server/httperr"
	"github.com/zintix-labs/rnglab/spec"
	"github.com/zintix-labs/rnglab/stats"
)

// SimResponse 模擬結果。Seed 可帶回請求以重現同一份報表。
type SimResponse struct {
	Report   *stats.RollReport `json:"report"`
	Seed     int64             `json:"seed"`
	UsedTime int64             `json:"used_ms"`
}

// SimHandler 以伺服器綁定的表格跑蒙地卡羅模擬，不碰任何使用者狀態。
type SimHandler struct {
	lab *rnglab.Lab
	tid spec.TID
}

func NewSimHandler(lab *rnglab.Lab, tid spec.TID) (*SimHandler, error) {
	if lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	if _, ok := lab.EntryByID(tid); !ok {
		return nil, errs.Fatalf("table id %d not registered", tid)
	}
	return &SimHandler{lab: lab, tid: tid}, nil
}

// Sim GET|POST /v1/sim
func (sh *SimHandler) Sim(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeSimRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	var sim *rnglab.Simulator
	if req.Seed != 0 {
		sim, err = sh.lab.NewSimulatorWithSeed(sh.tid, req.Seed)
	} else {
		sim, err = sh.lab.NewSimulator(sh.tid)
	}
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "build simulator err"))
		return
	}
	sh.run(r.Context(), w, sim, req)
}

// SimByCfg POST /v1/simbycfg 以請求內附的表格設定（JSON）模擬，不需註冊。
func (sh *SimHandler) SimByCfg(w http.ResponseWriter, r *http.Request) {
	type simByCfgRequest struct {
		dto.SimRequest
		Table json.RawMessage `json:"cfg"`
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	req := &simByCfgRequest{SimRequest: dto.SimRequest{Workers: 1}}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		httperr.Errs(w, errs.NewWarn("invalid json: "+err.Error()))
		return
	}
	if len(req.Table) == 0 {
		httperr.Errs(w, errs.NewWarn("cfg is required"))
		return
	}
	if req.Rolls < 1 || req.Rolls > dto.MaxSimRolls {
		httperr.Errs(w, errs.Warnf("rolls must be in [1, %d]", dto.MaxSimRolls))
		return
	}
	if req.Workers < 1 || req.Workers > dto.MaxSimWorkers {
		httperr.Errs(w, errs.Warnf("workers must be in [1, %d]", dto.MaxSimWorkers))
		return
	}
	seed := req.Seed
	if seed == 0 {
		seed = sh.lab.BaseSeed()
	}
	sim, err := sh.lab.NewSimulatorByJSON(req.Table, seed)
	if err != nil {
		// 設定錯誤屬於請求問題
		httperr.Errs(w, errs.Warnf("invalid table config: %v", err))
		return
	}
	sh.run(r.Context(), w, sim, &req.SimRequest)
}

func (sh *SimHandler) run(ctx context.Context, w http.ResponseWriter, sim *rnglab.Simulator, req *dto.SimRequest) {
	rep, used, err := sim.SimMPContext(ctx, req.Rolls, req.Workers, req.Buff, false)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "simulate err"))
		return
	}
	httperr.WriteJSON(w, http.StatusOK, SimResponse{
		Report:   rep,
		Seed:     sim.Seed(),
		UsedTime: used.Milliseconds(),
	})
}
