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

package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 5 * time.Second

// App 啟動所有註冊的 Component，並在收到 OS 信號、ctx 取消或任一 Component 結束時，
// 依序關閉 Component，再執行 OnShutdown 註冊的收尾（例如關閉 Runtime 與狀態後端）。
type App struct {
	comps []Component
	hooks []func(context.Context) error
}

// New 建立一個新的 App 實例。
func New() *App { return &App{} }

// NewWith 是 New 的語法糖，允許在建立時直接註冊多個 Component。
func NewWith(comps ...Component) *App {
	app := New()
	for _, c := range comps {
		app.Register(c)
	}
	return app
}

// Register 將一個 Component 註冊到 App 中，該 Component 將在 Run 時被管理。
func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// OnShutdown 註冊收尾函數；在所有 Component 關閉後依註冊順序執行。
func (a *App) OnShutdown(fn func(context.Context) error) {
	a.hooks = append(a.hooks, fn)
}

// Run 阻塞直到收到 SIGINT/SIGTERM 或任一 Component 的 Run 返回。
//   - 收到終止信號：優雅關閉並返回 nil。
//   - Component 返回錯誤：優雅關閉並返回該錯誤。
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext 與 Run 相同，但以 ctx 取消代替 OS 信號。
func (a *App) RunContext(ctx context.Context) error {
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}
	a.gracefulShutdown(shutdownTimeout)
	return err
}

// gracefulShutdown 在給定的 timeout 內依序呼叫所有 Component.Shutdown 與收尾函數。
func (a *App) gracefulShutdown(td time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), td)
	defer cancel()
	var all []error
	for _, c := range a.comps {
		all = append(all, c.Shutdown(ctx))
	}
	for _, fn := range a.hooks {
		all = append(all, fn(ctx))
	}
	if err := errors.Join(all...); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown err: %v\n", err)
	}
}
