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

package rnglab

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/spec"
	"github.com/zintix-labs/rnglab/state"
)

// Runtime 綁定一張表，為每個使用者懶建立一個 Session。
//
// 每個使用者的狀態存放在 Scoper.Scope(user)；同一個使用者的抽卡由其 Session 的
// gate 互斥，不同使用者互不影響。
type Runtime struct {
	lab  *Lab
	ts   *spec.TableSetting
	sc   state.Scoper
	opts []Option

	mu       sync.Mutex
	sessions map[string]*Session

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string
}

func newRuntime(l *Lab, ts *spec.TableSetting, sc state.Scoper, opts ...Option) *Runtime {
	rt := &Runtime{
		lab:      l,
		ts:       ts,
		sc:       sc,
		opts:     opts,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
	rt.reason.Store("")
	return rt
}

// Setting 綁定的表格設定。
func (rt *Runtime) Setting() *spec.TableSetting { return rt.ts }

// Session 取得（或建立）使用者的 Session。
func (rt *Runtime) Session(ctx context.Context, user string) (*Session, error) {
	if err := rt.check(ctx); err != nil {
		return nil, err
	}
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, errs.NewWarn("user required")
	}

	rt.mu.Lock()
	s, ok := rt.sessions[user]
	rt.mu.Unlock()
	if ok {
		return s, nil
	}

	// 載入走 store I/O，不持有 mu；同一使用者並發建立時以先寫入者為準
	opts := append(slices.Clone(rt.opts), WithUser(user))
	s, err := newSession(ctx, rt.ts, rt.lab.cf, rt.lab.seed.next(), rt.sc.Scope(user), opts...)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed.Load() {
		s.Close()
		return nil, errs.Kind(errs.ErrSessionClosed, nil, rt.ClosedReason())
	}
	if cur, ok := rt.sessions[user]; ok {
		s.Close()
		return cur, nil
	}
	rt.sessions[user] = s
	return s, nil
}

// Evict 移除閒置的使用者 Session，下次請求時從 store 重新載入。
// 抽卡進行中或已降級（狀態只在記憶體）的 Session 不移除，回傳 false。
func (rt *Runtime) Evict(user string) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	user = strings.TrimSpace(user)
	s, ok := rt.sessions[user]
	if !ok || s.Busy() || s.Degraded() {
		return false
	}
	delete(rt.sessions, user)
	s.Close()
	return true
}

// Roll 替使用者執行一次完整抽卡。
func (rt *Runtime) Roll(ctx context.Context, user string, p Presenter) (Outcome, error) {
	s, err := rt.Session(ctx, user)
	if err != nil {
		return Outcome{}, err
	}
	return s.Roll(ctx, p)
}

func (rt *Runtime) PurchaseBuff(ctx context.Context, user string) (state.Economy, error) {
	s, err := rt.Session(ctx, user)
	if err != nil {
		return state.Economy{}, err
	}
	return s.PurchaseBuff(ctx)
}

func (rt *Runtime) ToggleBuff(ctx context.Context, user string) (state.Economy, error) {
	s, err := rt.Session(ctx, user)
	if err != nil {
		return state.Economy{}, err
	}
	return s.ToggleBuff(ctx)
}

// Users 已建立 Session 的使用者（排序）。
func (rt *Runtime) Users() []string {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	us := make([]string, 0, len(rt.sessions))
	for u := range rt.sessions {
		us = append(us, u)
	}
	slices.Sort(us)
	return us
}

// RuntimeMetrics 拉取式觀測快照，不綁任何 metrics SDK。
type RuntimeMetrics struct {
	TableName   string           `json:"table_name"`
	TableID     spec.TID         `json:"table_id"`
	Sessions    []SessionMetrics `json:"sessions"`
	Closed      bool             `json:"closed"`
	CloseReason string           `json:"close_reason"`
}

func (rt *Runtime) Metrics() RuntimeMetrics {
	rt.mu.Lock()
	ss := make([]*Session, 0, len(rt.sessions))
	for _, s := range rt.sessions {
		ss = append(ss, s)
	}
	rt.mu.Unlock()

	ms := make([]SessionMetrics, 0, len(ss))
	for _, s := range ss {
		ms = append(ms, s.Metrics())
	}
	slices.SortFunc(ms, func(a, b SessionMetrics) int { return strings.Compare(a.User, b.User) })
	return RuntimeMetrics{
		TableName:   rt.ts.TableName,
		TableID:     rt.ts.TableID,
		Sessions:    ms,
		Closed:      rt.Closed(),
		CloseReason: rt.ClosedReason(),
	}
}

func (rt *Runtime) check(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errs.Kind(errs.ErrRollCanceled, ctx.Err(), "")
	case <-rt.done:
		// done is the source of truth; keep a fast boolean for cheap reads.
		rt.closed.Store(true)
		return errs.Kind(errs.ErrSessionClosed, nil, rt.ClosedReason())
	default:
	}
	return nil
}

// Close transitions the runtime into a closed state. It is safe to call multiple times.
func (rt *Runtime) Close() {
	rt.closeWithReason("closed")
}

// closeWithReason closes the runtime and every session, recording the reason once.
func (rt *Runtime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)

		rt.mu.Lock()
		for _, s := range rt.sessions {
			s.Close()
		}
		rt.mu.Unlock()
	})
}

// Closed reports whether the runtime has been closed.
func (rt *Runtime) Closed() bool {
	return rt.closed.Load()
}

func (rt *Runtime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
