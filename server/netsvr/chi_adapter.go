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
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/zintix-labs/rnglab/server/httperr"
)

// DefaultAddr 未設定 RNGLAB_ADDR 時的監聽位址。
const DefaultAddr string = ":5808"

// Timeouts http.Server 的各段逾時。
//
// 抽卡請求在 handler 內另有 timeout，Write 需大於它；sim 報表可能跑上數秒。
type Timeouts struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
}

var DefaultTimeouts = Timeouts{
	ReadHeader: 5 * time.Second,
	Read:       10 * time.Second,
	Write:      30 * time.Second,
	Idle:       120 * time.Second,
}

// ChiAdapter 以 chi 實作 NetSvr；子路由（Group）只持有 router，沒有 server。
type ChiAdapter struct {
	router chi.Router
	server *http.Server
}

// NewChiServer addr 為空時使用 DefaultAddr。
func NewChiServer(addr string) *ChiAdapter {
	return NewChiServerWith(addr, DefaultTimeouts)
}

// NewChiServerWith 未匹配的路徑與方法一律回 JSON，與 API 其他錯誤回應同格式。
func NewChiServerWith(addr string, to Timeouts) *ChiAdapter {
	if strings.TrimSpace(addr) == "" {
		addr = DefaultAddr
	}
	cr := chi.NewRouter()
	cr.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperr.WriteJSON(w, http.StatusNotFound, routeErr{Error: "no route for " + r.URL.Path})
	})
	cr.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperr.WriteJSON(w, http.StatusMethodNotAllowed, routeErr{Error: r.Method + " not allowed on " + r.URL.Path})
	})
	return &ChiAdapter{
		router: cr,
		server: &http.Server{
			Addr:              addr,
			Handler:           cr,
			ReadHeaderTimeout: to.ReadHeader,
			ReadTimeout:       to.Read,
			WriteTimeout:      to.Write,
			IdleTimeout:       to.Idle,
		},
	}
}

type routeErr struct {
	Error string `json:"error"`
}

func (c *ChiAdapter) Ready() bool {
	if c == nil || c.router == nil || c.server == nil {
		return false
	}
	return strings.Contains(c.server.Addr, ":") && c.server.Handler == c.router
}

// Run 阻塞直到 server 停止；Shutdown 造成的 http.ErrServerClosed 視為正常結束。
func (c *ChiAdapter) Run() error {
	err := c.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (c *ChiAdapter) Shutdown(ctx context.Context) error {
	return c.server.Shutdown(ctx)
}

func (c *ChiAdapter) Use(mw func(http.Handler) http.Handler) { c.router.Use(mw) }

func (c *ChiAdapter) Get(path string, h http.HandlerFunc) { c.router.Get(path, h) }

func (c *ChiAdapter) Post(path string, h http.HandlerFunc) { c.router.Post(path, h) }

func (c *ChiAdapter) Group(path string, fn func(subRouter NetRouter)) {
	c.router.Route(path, func(r chi.Router) {
		fn(&ChiAdapter{router: r})
	})
}

func (c *ChiAdapter) Address() string {
	if c.server == nil {
		return ""
	}
	return c.server.Addr
}

// Handler 回傳根路由，供 httptest 直接驅動。
func (c *ChiAdapter) Handler() http.Handler {
	return c.router
}
