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

package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/rnglab/errs"
)

// enum LogMode
type LogMode uint8

const (
	ModeDev LogMode = iota
	ModeProd
	ModeSilence
)

var modeNames = map[string]LogMode{
	"dev":     ModeDev,
	"prod":    ModeProd,
	"silence": ModeSilence,
}

// ParseMode 將環境變數/flag 的字串轉為 LogMode（dev/prod/silence，不分大小寫）。
func ParseMode(s string) (LogMode, error) {
	if m, ok := modeNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return ModeDev, errs.Warnf("unknown log mode: %q", s)
}

func (m LogMode) String() string {
	for k, v := range modeNames {
		if v == m {
			return k
		}
	}
	return "unknown"
}

// Session、Runtime、HTTP middleware 都只依賴 *slog.Logger，組裝方式二選一：
//   - NewDefaultLogger / NewDefaultAsyncLogger 依 LogMode 建好 logger。
//   - 自組 slog.Handler（ReplaceAttr、LevelVar...）後以 NewLogger 包裝。
//
// 請求路徑上的 log 建議走 AsyncHandler，寫出延遲不會回到抽卡。

// NewDefaultLogger 依 LogMode 的同步 logger。
func NewDefaultLogger(mode LogMode) *slog.Logger {
	return slog.New(buildHandler(mode))
}

// NewDefaultAsyncLogger 依 LogMode 的非同步 logger，佇列 8192 筆。
func NewDefaultAsyncLogger(mode LogMode) *slog.Logger {
	return slog.New(NewAsyncHandler(buildHandler(mode), 8192))
}

// NewLogger h 為 nil 時退回 dev handler。
func NewLogger(h slog.Handler) *slog.Logger {
	if h == nil {
		h = buildHandler(ModeDev)
	}
	return slog.New(h)
}

// AsyncHandler 把任何 slog.Handler 變成非阻塞：Handle 只 enqueue，背景 goroutine 寫出。
//
// 佇列滿或已 Close 時丟棄並計數；丟棄筆數會在下一筆成功寫出後補一筆 "log.dropped"。
// WithAttrs / WithGroup 衍生的 handler 共用同一條佇列。
type AsyncHandler struct {
	next slog.Handler
	q    *queue
}

type queue struct {
	mu     sync.RWMutex // 保護 ch 的 close 與 send
	ch     chan entry
	shut   bool
	done   chan struct{}
	report slog.Handler // 丟棄通知寫到最底層的 handler

	dropped    atomic.Uint64
	unreported atomic.Uint64
}

type entry struct {
	ctx context.Context
	rec slog.Record
	h   slog.Handler
}

// NewAsyncHandler buf <= 0 時為 1024。Close 時會 drain 完整個佇列，buf 越大 shutdown 越久。
func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next = buildHandler(ModeDev)
	}
	if buf <= 0 {
		buf = 1024
	}
	q := &queue{
		ch:     make(chan entry, buf),
		done:   make(chan struct{}),
		report: next,
	}
	go q.run()
	return &AsyncHandler{next: next, q: q}
}

func (q *queue) run() {
	defer close(q.done)
	for e := range q.ch {
		_ = e.h.Handle(e.ctx, e.rec)
		if n := q.unreported.Swap(0); n > 0 {
			r := slog.NewRecord(e.rec.Time, slog.LevelWarn, "log.dropped", 0)
			r.AddAttrs(slog.Uint64("n", n))
			_ = q.report.Handle(context.Background(), r)
		}
	}
}

// offer 佇列滿或已關閉時回傳 false。
func (q *queue) offer(e entry) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.shut {
		return false
	}
	select {
	case q.ch <- e:
		return true
	default:
		return false
	}
}

func (q *queue) drop(live bool) {
	q.dropped.Add(1)
	if live {
		q.unreported.Add(1)
	}
}

func (h *AsyncHandler) Ready() bool {
	return h != nil && h.q != nil
}

// Dropped 累計丟棄筆數（含 Close 之後送進來的）。
func (h *AsyncHandler) Dropped() uint64 {
	if !h.Ready() {
		return 0
	}
	return h.q.dropped.Load()
}

// Close 停止接收並等待佇列寫完；可重複呼叫。不屬於 slog.Handler 介面。
func (h *AsyncHandler) Close() {
	if !h.Ready() {
		return
	}
	h.q.mu.Lock()
	if !h.q.shut {
		h.q.shut = true
		close(h.q.ch)
	}
	h.q.mu.Unlock()
	<-h.q.done
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle Record 先 Clone，attrs 才能安全跨 goroutine。
func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Ready() {
		return nil
	}
	if !h.q.offer(entry{ctx: ctx, rec: r.Clone(), h: h.next}) {
		h.q.mu.RLock()
		live := !h.q.shut
		h.q.mu.RUnlock()
		h.q.drop(live)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), q: h.q}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), q: h.q}
}

// NewAsync 同 NewDefaultAsyncLogger，但同時回傳 handler 供呼叫端 Close。
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	ah := NewAsyncHandler(buildHandler(mode), buf)
	return slog.New(ah), ah
}

func buildHandler(logmode LogMode) slog.Handler {
	switch logmode {
	case ModeProd:
		// 正式環境：JSON + stdout，給 Loki / Promtail
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo, ReplaceAttr: expandErr})
	case ModeSilence:
		return slog.NewTextHandler(io.Discard, nil)
	default:
		return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug, ReplaceAttr: expandErr})
	}
}

// expandErr 把 *errs.E 攤成 group（msg、lv、extra、cause），方便依等級過濾降級事件。
func expandErr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindAny {
		return a
	}
	err, ok := a.Value.Any().(error)
	if !ok {
		return a
	}
	e, ok := errs.AsErr(err)
	if !ok {
		return a
	}
	attrs := []slog.Attr{
		slog.String("msg", e.Message),
		slog.String("lv", e.ErrLv.String()),
	}
	if e.Extra != "" {
		attrs = append(attrs, slog.String("extra", e.Extra))
	}
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}
	return slog.Attr{Key: a.Key, Value: slog.GroupValue(attrs...)}
}
