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

// Package server 是預設的 HTTP 組裝與啟動入口。
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/server/api"
	"github.com/zintix-labs/rnglab/server/app"
	"github.com/zintix-labs/rnglab/server/netsvr"
	"github.com/zintix-labs/rnglab/server/svrcfg"
)

// Run 是 server 套件的組裝器與啟動入口：
//  1. 驗證 SvrCfg（logger、Lab、表格、狀態後端）。
//  2. 以 sCfg.Addr 建立 HTTP server（netsvr）。
//  3. 註冊路由與 middleware（api.RegisterRoutes）。
//  4. 啟動 app.Run()，收到訊號後依序關閉 server、Runtime、狀態後端。
//
// Run 不讀環境變數；所有依賴都由 SvrCfg 注入（見 svrcfg.Load）。
func Run(sCfg *svrcfg.SvrCfg) error {
	return RunWithSvr(sCfg, netsvr.NewChiServer(sCfg.Addr))
}

// RunWithSvr 與 Run 相同，但由呼叫端注入 NetSvr（自訂 listener、timeout 或既有框架）。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		// 防止外層傳入的 logger 不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		return errs.NewFatal("svr is required")
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		return errs.NewFatal("default server is not ready")
	}

	rt, err := api.RegisterRoutes(svr, sCfg)
	if err != nil {
		sCfg.Log.Error("register routes failed", slog.Any("err", err))
		return err
	}

	a := app.NewWith(svr)
	a.OnShutdown(func(context.Context) error {
		rt.Close()
		return nil
	})
	a.OnShutdown(func(context.Context) error {
		return sCfg.Close()
	})

	ts := rt.Setting()
	sCfg.Log.Info("[rnglab] listening",
		slog.String("addr", svr.Address()),
		slog.String("table", ts.TableName),
		slog.Bool("fast_roll", sCfg.FastRoll),
	)
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	return nil
}
