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

// Package httperr 是 HTTP 邊界層的錯誤映射：errs 等級與種類 → status code。
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/rnglab/errs"
)

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則：
//   - ctx timeout/cancel        → 504/408
//   - ErrSessionBusy            → 409（抽卡進行中）
//   - ErrInsufficientFunds      → 402
//   - ErrSessionClosed          → 503
//   - 其他 errs.Warn            → 400
//   - errs.Fatal / 非本包錯誤    → 500
//
// 放在 server/* 而不是 errs，核心錯誤包不依賴 net/http。
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, errs.ErrRollCanceled):
		return http.StatusRequestTimeout
	case errors.Is(err, errs.ErrSessionBusy):
		return http.StatusConflict
	case errors.Is(err, errs.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, errs.ErrSessionClosed):
		return http.StatusServiceUnavailable
	}

	switch errs.Level(err) {
	case errs.Warn:
		return http.StatusBadRequest
	case errs.Log:
		// Log 等級代表已降級但流程成功，不該走到這裡
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// Errs 寫回純文字錯誤。
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	status := StatusCode(err)
	msg := err.Error()
	if e, ok := errs.AsErr(err); ok && status < 500 {
		msg = e.Message
	}
	http.Error(w, msg, status)
}

// WriteJSON 以 application/json 寫回 v。
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}

// Log 依 status 決定記錄等級；4xx 的請求問題不記錄（access log 已涵蓋）。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusConflict, status == http.StatusTooManyRequests:
		log.Warn(msg, slog.Int("status", status), slog.Any("err", err))
	case status >= 500:
		log.Error(msg, slog.Int("status", status), slog.Any("err", err))
	}
}
