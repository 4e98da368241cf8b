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

package dto

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/zintix-labs/rnglab/errs"
)

// 防止 body 過大
const maxBody = 1 << 20

// UserRequest 針對單一使用者的請求（state / odds / roll / buff）。
type UserRequest struct {
	UID string `json:"uid"`
}

// DecodeUserRequest 從 query string（GET）或 JSON body（POST）取出 uid。
//
// POST 的 body 可以為空，此時退回 query string；未知欄位一律拒絕。
func DecodeUserRequest(r *http.Request) (*UserRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := &UserRequest{UID: r.URL.Query().Get("uid")}

	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		if err := decodeBody(r, req); err != nil {
			return nil, err
		}
	default:
		return nil, errs.NewWarn("method not allowed")
	}
	req.UID = strings.TrimSpace(req.UID)
	if req.UID == "" {
		return nil, errs.NewWarn("uid required")
	}
	return req, nil
}

// SimRequest 以伺服器綁定的表格跑一次模擬。
type SimRequest struct {
	Rolls   int   `json:"rolls"`
	Workers int   `json:"workers"`
	Buff    bool  `json:"buff"`
	Seed    int64 `json:"seed,omitempty"` // 0 表示由伺服器派生
}

// 單次請求的上限，避免阻塞 handler 過久
const (
	MaxSimRolls   = 10_000_000
	MaxSimWorkers = 64
)

// DecodeSimRequest 支援 GET query（rolls/workers/buff/seed）與 POST JSON。
func DecodeSimRequest(r *http.Request) (*SimRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	req := &SimRequest{Workers: 1}

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		if s := q.Get("rolls"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid rolls: %v", err))
			}
			req.Rolls = v
		}
		if s := q.Get("workers"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid workers: %v", err))
			}
			req.Workers = v
		}
		if s := q.Get("buff"); s != "" {
			v, err := strconv.ParseBool(s)
			if err != nil {
				return nil, errs.NewWarn("invalid buff value " + err.Error())
			}
			req.Buff = v
		}
		if s := q.Get("seed"); s != "" {
			v, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, errs.NewWarn(fmt.Sprintf("invalid seed: %v", err))
			}
			req.Seed = v
		}
	case http.MethodPost:
		if err := decodeBody(r, req); err != nil {
			return nil, err
		}
	default:
		return nil, errs.NewWarn("method not allowed")
	}

	if req.Rolls < 1 || req.Rolls > MaxSimRolls {
		return nil, errs.Warnf("rolls must be in [1, %d]", MaxSimRolls)
	}
	if req.Workers < 1 || req.Workers > MaxSimWorkers {
		return nil, errs.Warnf("workers must be in [1, %d]", MaxSimWorkers)
	}
	return req, nil
}

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return errs.NewWarn("invalid json: " + err.Error())
	}
	return nil
}
