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
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/sdk/achieve"
	"github.com/zintix-labs/rnglab/sdk/core"
	"github.com/zintix-labs/rnglab/sdk/drawer"
	"github.com/zintix-labs/rnglab/sdk/pity"
	"github.com/zintix-labs/rnglab/sdk/table"
	"github.com/zintix-labs/rnglab/spec"
	"github.com/zintix-labs/rnglab/state"
)

// Outcome 一次真實抽卡的結果。
type Outcome struct {
	Tier     table.Tier            `json:"tier"`
	Fake     []table.Tier          `json:"fake"`
	Unlocked []achieve.Achievement `json:"unlocked"`
	Degraded bool                  `json:"degraded"` // 持久化不可用，狀態只存在記憶體
	Seq      int                   `json:"seq"`      // 本 session 第幾次真實抽卡
	Count    int                   `json:"count"`    // 提交後該 Tier 的累計次數
}

// Session 一個使用者對一張稀有度表的抽卡流程。
//
// 狀態機：Idle -> RollInProgress -> Idle，由 gate 原子旗標保證同時只有一次抽卡。
// 狀態（stats/pity/economy/achievements）只在 commit 內修改，修改後立即寫回 store。
//
// 並發語意：
//   - gate 讓重複觸發成為 no-op（ErrSessionBusy）。
//   - mu 保護狀態與 PRNG，commit 的臨界區即使 Session 被多個 goroutine 共用也成立。
type Session struct {
	user   string
	ts     *spec.TableSetting
	drawer *drawer.Drawer
	ach    *achieve.Engine
	store  state.Store
	log    *slog.Logger
	fakes  int
	pacer  Pacer
	seed   int64

	gate   atomic.Bool
	closed atomic.Bool

	mu       sync.Mutex
	core     *core.Core
	st       state.State
	degraded bool
	seq      int

	rolls  atomic.Int64
	busy   atomic.Int64
	faults atomic.Int64
}

type sessionOptions struct {
	log      *slog.Logger
	fastRoll *bool
	fakes    *int
	pacer    Pacer
	user     string
}

// Option 調整 Session 行為。
type Option func(*sessionOptions)

// WithLogger 指定 logger；未指定時不輸出。
func WithLogger(l *slog.Logger) Option {
	return func(o *sessionOptions) { o.log = l }
}

// WithFastRoll 開啟時跳過所有假抽。
func WithFastRoll(on bool) Option {
	return func(o *sessionOptions) { o.fastRoll = &on }
}

// WithFakeDraws 覆寫表格設定的假抽次數。
func WithFakeDraws(n int) Option {
	return func(o *sessionOptions) { o.fakes = &n }
}

// WithPacer 指定假抽呈現節奏，只影響 Session.Roll。
func WithPacer(p Pacer) Option {
	return func(o *sessionOptions) { o.pacer = p }
}

// WithUser 記錄在 log 中的使用者識別。
func WithUser(user string) Option {
	return func(o *sessionOptions) { o.user = user }
}

// newSession 載入狀態並建立 Session。
//
// 載入失敗不回傳錯誤：Session 以空狀態啟動並進入降級（只存在記憶體），
// 避免以空狀態覆寫仍存在於 store 的資料。
func newSession(ctx context.Context, ts *spec.TableSetting, cf core.Factory, seed int64, st state.Store, opts ...Option) (*Session, error) {
	if ts == nil || ts.Table() == nil {
		return nil, errs.NewFatal("table setting not initialized")
	}
	if cf == nil {
		return nil, errs.NewFatal("core factory required")
	}
	if st == nil {
		return nil, errs.NewFatal("state store required")
	}
	o := &sessionOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = slog.New(slog.DiscardHandler)
	}
	fakes := ts.Fakes()
	if o.fakes != nil {
		fakes = max(0, *o.fakes)
	}
	if o.fastRoll != nil && *o.fastRoll {
		fakes = 0
	}
	s := &Session{
		user:   o.user,
		ts:     ts,
		drawer: drawer.New(ts.Table(), ts.PityEngine()),
		ach:    ts.AchieveEngine(),
		store:  st,
		log:    o.log.With("user", o.user, "table", ts.TableName),
		fakes:  fakes,
		pacer:  o.pacer,
		seed:   seed,
		core:   core.New(cf.New(seed)),
	}

	loaded, err := state.Load(ctx, st)
	if err != nil {
		s.degraded = true
		s.log.Warn("state load failed, session runs in memory", "err", err)
	}
	fixed, changed := loaded.Reconciled()
	s.st = fixed
	if changed {
		s.log.Warn("economy reconciled from stats",
			"roll_count", loaded.Economy.RollCount,
			"spent", loaded.Economy.Spent,
			"total", loaded.Stats.Total(),
			"new_roll_count", fixed.Economy.RollCount)
		s.persist(ctx, state.KeyEconomy, s.st.Economy)
	}
	return s, nil
}

// ============================================================
// ** Roll **
// ============================================================

// Roll 一次進行中的抽卡。由 Begin 取得，必須以 defer Close() 歸還。
//
// Roll 只給一個 goroutine 使用。
type Roll struct {
	s         *Session
	counters  pity.Counters
	buff      float64
	fake      []table.Tier
	committed bool
	closed    bool
	out       Outcome
}

// Begin Idle -> RollInProgress。抽卡進行中回傳 errs.ErrSessionBusy，不改變任何狀態。
func (s *Session) Begin() (*Roll, error) {
	if s.closed.Load() {
		return nil, errs.ErrSessionClosed
	}
	if !s.gate.CompareAndSwap(false, true) {
		s.busy.Add(1)
		return nil, errs.ErrSessionBusy
	}
	s.mu.Lock()
	r := &Roll{
		s:        s,
		counters: s.st.Pity.Clone(),
		buff:     s.st.Economy.Multiplier(s.ts.Economy.BuffMultiplier),
	}
	s.mu.Unlock()
	return r, nil
}

// Fakes 產生 n 個假抽，使用 Begin 當下的保底與 buff，不修改任何狀態。
// Roll 提交或關閉後停止產生。
func (r *Roll) Fakes(n int) iter.Seq[table.Tier] {
	return func(yield func(table.Tier) bool) {
		for i := 0; i < n; i++ {
			if r.committed || r.closed {
				return
			}
			t := r.s.draw(r.counters, r.buff)
			r.fake = append(r.fake, t)
			if !yield(t) {
				return
			}
		}
	}
}

// Commit 執行真實抽卡並寫回狀態。同一個 Roll 只會提交一次，重複呼叫回傳第一次的結果。
//
// ctx 只傳遞給 store；取消不會中斷已開始的提交。持久化失敗只會降級，
// 唯一的錯誤是 Roll 已關閉（ErrSessionClosed）。
func (r *Roll) Commit(ctx context.Context) (Outcome, error) {
	if r.committed {
		return r.out, nil
	}
	if r.closed {
		return Outcome{}, errs.ErrSessionClosed
	}
	r.committed = true
	r.out = r.s.commit(context.WithoutCancel(ctx), r.fake)
	return r.out, nil
}

// Close RollInProgress -> Idle，可重複呼叫。
func (r *Roll) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.s.gate.Store(false)
}

// ============================================================
// ** Session 公開方法 **
// ============================================================

// Roll 完整執行一次抽卡：Begin、假抽（依 Pacer 節奏通知 p）、Commit、
// 通知結果與新成就、Close。ctx 只在 Commit 之前有效。
func (s *Session) Roll(ctx context.Context, p Presenter) (Outcome, error) {
	r, err := s.Begin()
	if err != nil {
		return Outcome{}, err
	}
	defer r.Close()
	if p == nil {
		p = NopPresenter{}
	}

	i := 0
	for t := range r.Fakes(s.fakes) {
		if s.pacer != nil {
			if err := s.pacer(ctx, i); err != nil {
				return Outcome{}, errs.Kind(errs.ErrRollCanceled, err, "")
			}
		}
		if err := ctx.Err(); err != nil {
			return Outcome{}, errs.Kind(errs.ErrRollCanceled, err, "")
		}
		s.present(ctx, "fake", func() error { return p.FakeDraw(ctx, i, t) })
		i++
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, errs.Kind(errs.ErrRollCanceled, err, "")
	}

	out, err := r.Commit(ctx)
	if err != nil {
		return out, err
	}
	s.present(ctx, "outcome", func() error { return p.Outcome(ctx, out) })
	for _, a := range out.Unlocked {
		s.present(ctx, "achievement", func() error { return p.Achievement(ctx, a) })
	}
	return out, nil
}

// Trigger 使用者按下抽卡：進行中的重複觸發直接忽略。
func (s *Session) Trigger(ctx context.Context, p Presenter) {
	if _, err := s.Roll(ctx, p); err != nil && !errors.Is(err, errs.ErrSessionBusy) {
		s.log.Debug("roll trigger ended without commit", "err", err)
	}
}

// PurchaseBuff 扣款並啟用 buff，成功後寫回 economy。
func (s *Session) PurchaseBuff(ctx context.Context) (state.Economy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.st.Economy.PurchaseBuff(s.ts.Economy.BuffCost)
	if err != nil {
		return s.st.Economy, err
	}
	s.st.Economy = e
	s.persist(context.WithoutCancel(ctx), state.KeyEconomy, s.st.Economy)
	return e, nil
}

// ToggleBuff 只在表格允許切換且已購買時有效。
func (s *Session) ToggleBuff(ctx context.Context) (state.Economy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.st.Economy.ToggleBuff(s.ts.Economy.Toggleable)
	if err != nil {
		return s.st.Economy, err
	}
	s.st.Economy = e
	s.persist(context.WithoutCancel(ctx), state.KeyEconomy, s.st.Economy)
	return e, nil
}

// TriggerBuff 使用者按下購買：餘額不足或已啟用視為 no-op。
func (s *Session) TriggerBuff(ctx context.Context) {
	if _, err := s.PurchaseBuff(ctx); err != nil {
		s.log.Debug("buff purchase ignored", "err", err)
	}
}

// Snapshot 回傳目前狀態的深拷貝。
func (s *Session) Snapshot() state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Clone()
}

// Probabilities 依目前保底與 buff 計算各 Tier 的抽中機率（表格順序）。
func (s *Session) Probabilities() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawer.Probabilities(s.st.Pity, s.st.Economy.Multiplier(s.ts.Economy.BuffMultiplier))
}

// Progress 各保底 Tier 的 n/threshold。
func (s *Session) Progress() []pity.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawer.Pity().Progress(s.st.Pity)
}

func (s *Session) Table() *table.Table { return s.ts.Table() }

func (s *Session) Setting() *spec.TableSetting { return s.ts }

func (s *Session) User() string { return s.user }

// Seed 出生 seed，用於追溯。
func (s *Session) Seed() int64 { return s.seed }

// CoreSnapshot 目前 PRNG 狀態，供稽核時重現後續抽卡序列。
func (s *Session) CoreSnapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.Snapshot()
}

// Degraded 回報持久化是否已不可用。
func (s *Session) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Busy 回報是否有抽卡進行中。
func (s *Session) Busy() bool { return s.gate.Load() }

// Close 之後 Begin 一律回傳 ErrSessionClosed；進行中的抽卡仍可完成。
func (s *Session) Close() { s.closed.Store(true) }

func (s *Session) Closed() bool { return s.closed.Load() }

// SessionMetrics 拉取式觀測快照。
type SessionMetrics struct {
	User     string `json:"user"`
	Rolls    int64  `json:"rolls"`
	Busy     int64  `json:"busy"`
	Faults   int64  `json:"faults"`
	Degraded bool   `json:"degraded"`
	InFlight bool   `json:"in_flight"`
}

func (s *Session) Metrics() SessionMetrics {
	return SessionMetrics{
		User:     s.user,
		Rolls:    s.rolls.Load(),
		Busy:     s.busy.Load(),
		Faults:   s.faults.Load(),
		Degraded: s.Degraded(),
		InFlight: s.Busy(),
	}
}

// ============================================================
// ** 內部方法 **
// ============================================================

func (s *Session) draw(c pity.Counters, buff float64) table.Tier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawer.Draw(s.core, c, buff)
}

// commit 臨界區：抽選、更新 stats/pity/economy、依序寫回、檢查成就。
func (s *Session) commit(ctx context.Context, fake []table.Tier) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	buff := s.st.Economy.Multiplier(s.ts.Economy.BuffMultiplier)
	t := s.drawer.Draw(s.core, s.st.Pity, buff)

	s.st.Stats[t.Name]++
	s.st.Pity = s.drawer.Pity().Advance(s.st.Pity, t.Name)
	s.st.Economy = s.st.Economy.Credit()
	s.persist(ctx, state.KeyStats, s.st.Stats)
	s.persist(ctx, state.KeyPity, s.st.Pity)
	s.persist(ctx, state.KeyEconomy, s.st.Economy)

	updated, newly := s.ach.Check(t, s.st.Achievements)
	if len(newly) > 0 {
		s.st.Achievements = updated
		s.persist(ctx, state.KeyAchievements, s.st.Achievements)
	}

	s.seq++
	s.rolls.Add(1)
	return Outcome{
		Tier:     t,
		Fake:     append([]table.Tier(nil), fake...),
		Unlocked: newly,
		Degraded: s.degraded,
		Seq:      s.seq,
		Count:    s.st.Stats[t.Name],
	}
}

// persist 寫回單一鍵；第一次失敗後 Session 降級為記憶體模式，之後不再寫入。
// 呼叫端必須持有 mu。
func (s *Session) persist(ctx context.Context, key string, v any) {
	if s.degraded {
		return
	}
	if err := state.Save(ctx, s.store, key, v); err != nil {
		s.degraded = true
		s.log.Warn("persistence unavailable, session runs in memory", "key", key, "err", err)
	}
}

// present 呼叫 Presenter，錯誤與 panic 只記錄不外傳。
func (s *Session) present(ctx context.Context, stage string, f func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.fault(ctx, stage, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := f(); err != nil {
		s.fault(ctx, stage, err)
	}
}

func (s *Session) fault(ctx context.Context, stage string, cause error) {
	s.faults.Add(1)
	s.log.LogAttrs(ctx, slog.LevelWarn, "presentation fault",
		slog.String("stage", stage),
		slog.Any("err", errs.Kind(errs.ErrPresentationFault, cause, stage)))
}
