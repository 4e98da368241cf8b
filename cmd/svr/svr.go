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

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zintix-labs/rnglab/server"
	"github.com/zintix-labs/rnglab/server/svrcfg"
)

// 設定優先序：flag > RNGLAB_* 環境變數 > 預設值。
func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := server.Run(cfg); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*svrcfg.SvrCfg, error) {
	e, err := svrcfg.ParseEnv()
	if err != nil {
		return nil, err
	}
	flag.StringVar(&e.Addr, "addr", e.Addr, "listen address")
	flag.StringVar(&e.LogMode, "log-mode", e.LogMode, "log mode: dev|prod|silence")
	flag.StringVar(&e.Table, "table", e.Table, "bound table (name or id)")
	flag.StringVar(&e.Store, "store", e.Store, "state backend: memory|file|sqlite|bolt")
	flag.StringVar(&e.StorePath, "path", e.StorePath, "state path (directory for file, file for sqlite/bolt)")
	flag.BoolVar(&e.FastRoll, "fast", e.FastRoll, "skip fake draws")
	flag.StringVar(&e.ConfigDir, "configs", e.ConfigDir, "extra table config directory")
	flag.Int64Var(&e.Seed, "seed", e.Seed, "base seed (0 = random)")
	flag.Parse()

	return svrcfg.Load(e)
}
