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

// Package netsvr 把 HTTP 框架隔離在 NetSvr / NetRouter 介面之後。
package netsvr

import (
	"net/http"

	"github.com/zintix-labs/rnglab/server/app"
)

// NetSvr 路由行為加上服務啟停，只交給最外層組裝使用。
// NetSvr 實作 app.Component，可直接交給 app.App 管理生命週期。
type NetSvr interface {
	NetRouter
	app.Component
	// Handler 根路由，供測試以 httptest 驅動。
	Handler() http.Handler
	Address() string
}

// NetRouter 純路由行為；handler 模組只拿得到這一層，看不到 Run/Shutdown。
type NetRouter interface {
	Use(middleware func(http.Handler) http.Handler)

	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)

	Group(path string, fn func(NetRouter))
}
