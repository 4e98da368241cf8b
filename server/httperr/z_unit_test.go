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

package httperr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/rnglab/errs"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{fmt.Errorf("wrap: %w", context.Canceled), http.StatusRequestTimeout},
		{errs.ErrSessionBusy, http.StatusConflict},
		{errs.Kind(errs.ErrInsufficientFunds, nil, "need 5000"), http.StatusPaymentRequired},
		{errs.Kind(errs.ErrSessionClosed, nil, ""), http.StatusServiceUnavailable},
		{errs.NewWarn("uid required"), http.StatusBadRequest},
		{errs.NewFatal("boom"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := StatusCode(c.err); got != c.want {
			t.Fatalf("StatusCode(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestErrsHidesDetailForWarn(t *testing.T) {
	w := httptest.NewRecorder()
	Errs(w, errs.WrapWithExtra(errs.NewWarn("uid required"), "decode", "x"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "errlv") {
		t.Fatalf("warn body should carry the message only: %q", w.Body.String())
	}
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusConflict, map[string]any{"accepted": false})
	if w.Code != http.StatusConflict || w.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected response: %d %v", w.Code, w.Header())
	}
	if strings.TrimSpace(w.Body.String()) != `{"accepted":false}` {
		t.Fatalf("body: %q", w.Body.String())
	}
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	Log(log, "roll", errs.NewWarn("bad uid"))
	if buf.Len() != 0 {
		t.Fatalf("400 should not be logged: %s", buf.String())
	}
	Log(log, "roll", errs.ErrSessionBusy)
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Fatalf("409 should be a warn: %s", buf.String())
	}
	buf.Reset()
	Log(log, "roll", errs.NewFatal("disk"))
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Fatalf("500 should be an error: %s", buf.String())
	}
}
