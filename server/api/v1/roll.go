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
	"log/slog"
	"net/http"
	"time"

	"github.com/zintix-labs/rnglab"
	"github.com/zintix-labs/rnglab/dto"
	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/server/httperr"
	"github.com/zintix-labs/rnglab/server/svrcfg"
	"github.com/zintix-labs/rnglab/state"
)

// 單次抽卡（含假抽與持久化）的上限
const rollTimeout = 5 * time.Second

// ============================================================
// ** RollHandler **
// ============================================================

// RollHandler 綁定一個 Runtime，每個 uid 一個 Session。
type RollHandler struct {
	rt  *rnglab.Runtime
	log *slog.Logger
}

func NewRollHandler(sCfg *svrcfg.SvrCfg) (*RollHandler, error) {
	rt, err := sCfg.Lab.NewRuntime(sCfg.Table, sCfg.Store, sCfg.Options()...)
	if err != nil {
		return nil, errs.Wrap(err, "build roll handler error")
	}
	return &RollHandler{rt: rt, log: sCfg.Log}, nil
}

// Runtime 供組裝層註冊關閉流程。
func (h *RollHandler) Runtime() *rnglab.Runtime { return h.rt }

// State GET /v1/state?uid=
func (h *RollHandler) State(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	v, err := dto.NewStateView(s)
	if err != nil {
		h.fail(w, "state view failed", err)
		return
	}
	httperr.WriteJSON(w, http.StatusOK, v)
}

// Odds GET /v1/odds?uid=
func (h *RollHandler) Odds(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	httperr.WriteJSON(w, http.StatusOK, dto.NewOddsView(s))
}

// Roll POST /v1/roll
//
// 忙碌中再次觸發回 409 且 accepted=false，狀態不變。
func (h *RollHandler) Roll(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeUserRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), rollTimeout)
	defer cancel()

	s, err := h.rt.Session(ctx, req.UID)
	if err != nil {
		h.fail(w, "open session failed", err)
		return
	}
	out, err := s.Roll(ctx, nil)
	if err != nil {
		if errs.Level(err) == errs.Warn {
			httperr.WriteJSON(w, httperr.StatusCode(err), dto.Rejected(req.UID, err))
			return
		}
		h.fail(w, "roll failed", err)
		return
	}
	httperr.WriteJSON(w, http.StatusOK, dto.NewRollResult(req.UID, out))
}

// Buff POST /v1/buff 一次性購買。
func (h *RollHandler) Buff(w http.ResponseWriter, r *http.Request) {
	h.buff(w, r, h.rt.PurchaseBuff)
}

// Toggle POST /v1/buff/toggle 僅 toggleable 表格可用。
func (h *RollHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.buff(w, r, h.rt.ToggleBuff)
}

func (h *RollHandler) buff(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (state.Economy, error)) {
	req, err := dto.DecodeUserRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	e, err := op(r.Context(), req.UID)
	if err != nil && errs.Level(err) != errs.Warn {
		h.fail(w, "buff failed", err)
		return
	}
	// 拒絕時 e 為目前的經濟狀態，呼叫端不需再查一次
	httperr.WriteJSON(w, httperr.StatusCode(err), dto.NewBuffResult(req.UID, e, err))
}

func (h *RollHandler) session(w http.ResponseWriter, r *http.Request) (*rnglab.Session, bool) {
	req, err := dto.DecodeUserRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return nil, false
	}
	s, err := h.rt.Session(r.Context(), req.UID)
	if err != nil {
		h.fail(w, "open session failed", err)
		return nil, false
	}
	return s, true
}

func (h *RollHandler) fail(w http.ResponseWriter, msg string, err error) {
	httperr.Log(h.log, msg, err)
	httperr.Errs(w, err)
}
