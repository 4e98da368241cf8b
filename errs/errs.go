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

// Package errs 是全專案共用的錯誤型別：等級（Fatal/Warn/Log）加上可 errors.Is 比對的種類。
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLevel 錯誤分級，讓最上層決定要中止、忽略還是只記錄。
//
//   - Fatal：組裝/設定錯誤，或狀態已不可信，需中止。
//   - Warn ：請求層級的可預期拒絕（忙碌中、餘額不足），呼叫端多半當成 no-op。
//   - Log  ：只需記錄的降級事件（呈現層失敗、持久化不可用），不影響流程。
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

func (l ErrLevel) String() string {
	switch l {
	case Fatal:
		return "fatal"
	case Warn:
		return "warn"
	case Log:
		return "log"
	}
	return ""
}

// E 統一的錯誤型別。
// Message 為主訊息；Extra 為呼叫端追加的上下文；Cause 為下層錯誤；
// kind 指向 kinds.go 宣告的哨兵，供 errors.Is 比對。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	kind    *E
}

// Error 格式：errlv=<lv> <msg> | extra: <extra> (cause: <cause>)
func (e *E) Error() string {
	var sb strings.Builder
	sb.WriteString("errlv=" + e.ErrLv.String() + " " + e.Message)
	if e.Extra != "" {
		sb.WriteString(" | extra: " + e.Extra)
	}
	if e.Cause != nil {
		sb.WriteString(" (cause: " + e.Cause.Error() + ")")
	}
	return sb.String()
}

func (e *E) Unwrap() error { return e.Cause }

// Is 讓 Kind 建出的錯誤能以 errors.Is(err, errs.ErrSessionBusy) 比對。
func (e *E) Is(target error) bool {
	t, ok := target.(*E)
	if !ok {
		return false
	}
	return e == t || (e.kind != nil && e.kind == t)
}

// Kind 回傳建立時指定的哨兵；非 Kind 建立的錯誤回傳 nil。
func (e *E) Kind() *E { return e.kind }

func NewFatal(msg string) *E { return &E{Message: msg, ErrLv: Fatal} }

func NewWarn(msg string) *E { return &E{Message: msg, ErrLv: Warn} }

func NewLog(msg string) *E { return &E{Message: msg, ErrLv: Log} }

func Fatalf(format string, a ...any) *E { return NewFatal(fmt.Sprintf(format, a...)) }

func Warnf(format string, a ...any) *E { return NewWarn(fmt.Sprintf(format, a...)) }

// Wrap 以 msg 包裝 cause。
//
// cause 鏈上已有 *E 時沿用其等級；否則（標準庫或三方錯誤）一律視為 Fatal。
// 可預期的情境應直接用 Kind 或 NewWarn，不要 Wrap。
func Wrap(cause error, msg string) *E {
	lv := Level(cause)
	if lv == None {
		lv = Fatal
	}
	return &E{Message: msg, Cause: cause, ErrLv: lv}
}

// WrapWithExtra 與 Wrap 相同，但附加上下文。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

// Kind 以哨兵 kind 的訊息與等級包裝 cause，並保留 errors.Is(err, kind) 的比對能力。
//
//	err := errs.Kind(errs.ErrPersistenceUnavailable, ioErr, "save stats")
//	errors.Is(err, errs.ErrPersistenceUnavailable) // true
//	errors.Is(err, ioErr)                          // true
func Kind(kind *E, cause error, extra string) *E {
	return &E{
		Message: kind.Message,
		Extra:   extra,
		Cause:   cause,
		ErrLv:   kind.ErrLv,
		kind:    kind,
	}
}

func AsErr(err error) (*E, bool) {
	var e *E
	ok := errors.As(err, &e)
	return e, ok
}

// Level 回傳 err 鏈上第一個 *E 的等級；非本包錯誤視為 Fatal，nil 為 None。
func Level(err error) ErrLevel {
	if err == nil {
		return None
	}
	if e, ok := AsErr(err); ok {
		return e.ErrLv
	}
	return Fatal
}
