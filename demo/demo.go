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

// Package demo 以內建的四張表（classic、luminous、abyssal、apollo）快速組出 Lab 與 server 設定。
package demo

import (
	"github.com/zintix-labs/rnglab"
	"github.com/zintix-labs/rnglab/catalog"
	"github.com/zintix-labs/rnglab/demo/demo_configs"
	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/sdk/core"
	"github.com/zintix-labs/rnglab/server/logger"
	"github.com/zintix-labs/rnglab/server/svrcfg"
	"github.com/zintix-labs/rnglab/store/memstore"
)

// ApolloID 完整十階表。
const ApolloID = 4

func New() (*catalog.Catalog, error) {
	return catalog.New(demo_configs.FS)
}

func NewLab() (*rnglab.Lab, error) {
	return rnglab.NewAuto(core.Default(), rnglab.Configs(demo_configs.FS))
}

// NewServerConfig 綁定 apollo、記憶體後端、dev log。
func NewServerConfig() (*svrcfg.SvrCfg, error) {
	lab, err := NewLab()
	if err != nil {
		return nil, errs.Wrap(err, "new lab failed")
	}
	scfg := &svrcfg.SvrCfg{
		Log:   logger.NewDefaultAsyncLogger(logger.ModeDev),
		Addr:  ":5808",
		Lab:   lab,
		Table: ApolloID,
		Store: memstore.New(),
	}
	return scfg, scfg.Valid()
}
