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

package api

import (
	"log/slog"

	"github.com/zintix-labs/rnglab"
	v1 "github.com/zintix-labs/rnglab/server/api/v1"
	"github.com/zintix-labs/rnglab/server/netsvr"
	"github.com/zintix-labs/rnglab/server/netsvr/middleware"
	"github.com/zintix-labs/rnglab/server/svrcfg"
)

// RegisterRoutes 註冊 middleware 與 v1 api，回傳綁定表格的 Runtime 供呼叫端關閉。
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) (*rnglab.Runtime, error) {
	registerMiddleware(svr, sCfg.Log) // 1. 註冊 middleware
	return registerV1API(svr, sCfg)   // 2. 註冊 v1 api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetSvr, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(middleware.Compression)
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) (*rnglab.Runtime, error) {
	r, err := v1.NewRollHandler(sCfg)
	if err != nil {
		return nil, err
	}
	s, err := v1.NewSimHandler(sCfg.Lab, sCfg.Table)
	if err != nil {
		return nil, err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/tables", v1.Tables(sCfg.Lab, sCfg.Table))
		vOne.Get("/state", r.State)
		vOne.Get("/odds", r.Odds)
		vOne.Get("/sim", s.Sim)

		vOne.Post("/roll", r.Roll)
		vOne.Post("/buff", r.Buff)
		vOne.Post("/buff/toggle", r.Toggle)
		vOne.Post("/sim", s.Sim)
		vOne.Post("/simbycfg", s.SimByCfg)
	})
	return r.Runtime(), nil
}
