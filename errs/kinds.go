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
package errs

// 抽卡流程中可預期的錯誤種類，以 errors.Is 比對。
var (
	// ErrSessionBusy 抽卡進行中再次觸發；觸發端視為 no-op。
	ErrSessionBusy = NewWarn("session busy: roll in progress")
	// ErrInsufficientFunds 餘額不足以購買 buff；觸發端視為 no-op。
	ErrInsufficientFunds = NewWarn("insufficient funds")
	// ErrBuffActive buff 已啟用，不重複扣款。
	ErrBuffActive = NewWarn("buff already active")
	// ErrBuffLocked 表格不允許切換，或尚未購買 buff。
	ErrBuffLocked = NewWarn("buff toggle not allowed")
	// ErrSessionClosed session 或 runtime 已關閉。
	ErrSessionClosed = NewWarn("session closed")

	// ErrPresentationFault 呈現層回報錯誤或 panic；只記錄，不影響狀態。
	ErrPresentationFault = NewLog("presentation fault")
	// ErrPersistenceUnavailable 持久化讀寫失敗；session 降級為記憶體模式。
	ErrPersistenceUnavailable = NewLog("persistence unavailable")
)

// ErrRollCanceled context 在 commit 前取消；狀態未變。
var ErrRollCanceled = NewWarn("roll canceled before commit")

// ErrBadSnapshot PRNG 快照或其文字編碼無法解析。
var ErrBadSnapshot = NewWarn("bad core snapshot")
