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

package netsvr

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestChiAdapterRoutes(t *testing.T) {
	svr := NewChiServer("")
	if !svr.Ready() || svr.Address() != DefaultAddr {
		t.Fatalf("default server should be ready on %s, got %q", DefaultAddr, svr.Address())
	}
	svr.Group("/v1", func(r NetRouter) {
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "pong")
		})
	})

	cases := []struct {
		method, path string
		code         int
		body         string
	}{
		{http.MethodGet, "/v1/ping", http.StatusOK, "pong"},
		{http.MethodPost, "/v1/ping", http.StatusMethodNotAllowed, `"error":"POST not allowed on /v1/ping"`},
		{http.MethodGet, "/v2/ping", http.StatusNotFound, `"error":"no route for /v2/ping"`},
	}
	for _, c := range cases {
		w := httptest.NewRecorder()
		svr.Handler().ServeHTTP(w, httptest.NewRequest(c.method, c.path, nil))
		if w.Code != c.code || !strings.Contains(w.Body.String(), c.body) {
			t.Fatalf("%s %s: %d %q", c.method, c.path, w.Code, w.Body.String())
		}
	}
}
