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

// Package svrcfg 組裝 server 需要的依賴：logger、Lab、綁定的表格與狀態後端。
package svrcfg

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/zintix-labs/rnglab"
	"github.com/zintix-labs/rnglab/demo/demo_configs"
	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/sdk/core"
	"github.com/zintix-labs/rnglab/server/logger"
	"github.com/zintix-labs/rnglab/spec"
	"github.com/zintix-labs/rnglab/state"
	"github.com/zintix-labs/rnglab/store"
)

// EnvPrefix 所有環境變數的前綴。
const EnvPrefix = "RNGLAB_"

// Env 由環境變數讀入的原始設定；cmd/* 的 flag 會再覆寫。
type Env struct {
	Addr      string `env:"ADDR"       envDefault:":5808"`
	LogMode   string `env:"LOG_MODE"   envDefault:"dev"`
	Table     string `env:"TABLE"      envDefault:"apollo"` // 名稱或數字 id
	Store     string `env:"STORE"      envDefault:"memory"`
	StorePath string `env:"STORE_PATH"`
	FastRoll  bool   `env:"FAST_ROLL"`
	ConfigDir string `env:"CONFIG_DIR"` // 額外的表格設定目錄，檔名不可與內建重複
	Seed      int64  `env:"SEED"`       // 0 表示由 crypto/rand 產生
}

// ParseEnv 從行程環境讀入 Env。
func ParseEnv() (Env, error) {
	return parseEnv(nil)
}

// parseEnv environ 為 nil 時讀 os.Environ。
func parseEnv(environ map[string]string) (Env, error) {
	var e Env
	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return Env{}, errs.Wrap(err, "parse env")
	}
	return e, nil
}

// SvrCfg server 的完整依賴。由 Load 組出，或由呼叫端自行填入後呼叫 Valid。
type SvrCfg struct {
	Log      *slog.Logger
	Addr     string
	Lab      *rnglab.Lab
	Table    spec.TID
	Store    state.Scoper
	Closer   io.Closer // Store 的關閉者；可為 nil
	FastRoll bool
	Seed     int64 // 0 表示由 Lab 派生
}

// Load 依 Env 建立 logger、Lab（內建表格 + ConfigDir）與狀態後端。
func Load(e Env) (*SvrCfg, error) {
	mode, err := logger.ParseMode(e.LogMode)
	if err != nil {
		return nil, err
	}
	log := logger.NewDefaultAsyncLogger(mode)

	cfgs := []fs.FS{demo_configs.FS}
	if dir := strings.TrimSpace(e.ConfigDir); dir != "" {
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			return nil, errs.NewWarn("config dir not found: " + dir)
		}
		cfgs = append(cfgs, os.DirFS(dir))
	}

	var lab *rnglab.Lab
	if e.Seed != 0 {
		lab, err = rnglab.NewWithSeed(core.Default(), cfgs, e.Seed)
	} else {
		lab, err = rnglab.New(core.Default(), cfgs)
	}
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()

	tid, err := lab.Resolve(e.Table)
	if err != nil {
		return nil, err
	}

	sc, closer, err := store.Open(store.Kind(e.Store), e.StorePath)
	if err != nil {
		return nil, err
	}

	cfg := &SvrCfg{
		Log:      log,
		Addr:     e.Addr,
		Lab:      lab,
		Table:    tid,
		Store:    sc,
		Closer:   closer,
		FastRoll: e.FastRoll,
	}
	if err := cfg.Valid(); err != nil {
		_ = closer.Close()
		return nil, err
	}
	return cfg, nil
}

// Valid 檢查必要依賴；Log 為 nil 時補上安靜的 logger。
func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log = logger.NewDefaultLogger(logger.ModeSilence)
	}
	if sc.Lab == nil {
		return errs.NewFatal("lab is required")
	}
	if sc.Store == nil {
		return errs.NewFatal("state store is required")
	}
	if _, ok := sc.Lab.EntryByID(sc.Table); !ok {
		return errs.Fatalf("table id %d not registered", sc.Table)
	}
	return nil
}

// Options 建立 Session 時共用的選項。
func (sc *SvrCfg) Options() []rnglab.Option {
	return []rnglab.Option{
		rnglab.WithLogger(sc.Log),
		rnglab.WithFastRoll(sc.FastRoll),
	}
}

// Close 關閉狀態後端與 async logger。
func (sc *SvrCfg) Close() error {
	var err error
	if sc.Closer != nil {
		err = sc.Closer.Close()
	}
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok {
			ah.Close()
		}
	}
	return err
}
