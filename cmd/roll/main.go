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

// Command roll 是單一本機使用者的終端抽卡機：假抽動畫、保底進度、buff 與成就。
//
//	go run ./cmd/roll -n 10
//	go run ./cmd/roll -buy
//	go run ./cmd/roll -table classic -toggle
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/zintix-labs/rnglab"
	"github.com/zintix-labs/rnglab/demo/demo_configs"
	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/sdk/core"
	"github.com/zintix-labs/rnglab/server/logger"
	"github.com/zintix-labs/rnglab/store"
)

type config struct {
	table   string
	store   string
	path    string
	user    string
	n       int
	buy     bool
	toggle  bool
	fast    bool
	logMode string
}

func main() {
	cfg := new(config)
	flag.StringVar(&cfg.table, "table", "apollo", "table (name or id)")
	flag.StringVar(&cfg.store, "store", "file", "state backend: memory|file|sqlite|bolt")
	flag.StringVar(&cfg.path, "path", ".rnglab", "state path (directory for file, file for sqlite/bolt)")
	flag.StringVar(&cfg.user, "user", "local", "state namespace")
	flag.IntVar(&cfg.n, "n", 1, "number of rolls")
	flag.BoolVar(&cfg.buy, "buy", false, "purchase the buff before rolling")
	flag.BoolVar(&cfg.toggle, "toggle", false, "toggle an owned buff (toggleable tables only)")
	flag.BoolVar(&cfg.fast, "fast", false, "skip fake draws")
	flag.StringVar(&cfg.logMode, "log-mode", "silence", "log mode: dev|prod|silence")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config, w io.Writer) error {
	mode, err := logger.ParseMode(cfg.logMode)
	if err != nil {
		return err
	}
	if cfg.n < 0 {
		return errs.NewWarn("n must be >= 0")
	}

	lab, err := rnglab.NewAuto(core.Default(), rnglab.Configs(demo_configs.FS))
	if err != nil {
		return err
	}
	tid, err := lab.Resolve(cfg.table)
	if err != nil {
		return err
	}
	sc, closer, err := store.Open(store.Kind(cfg.store), cfg.path)
	if err != nil {
		return err
	}
	defer closer.Close()

	opts := []rnglab.Option{
		rnglab.WithLogger(logger.NewDefaultLogger(mode)),
		rnglab.WithFastRoll(cfg.fast),
		rnglab.WithUser(cfg.user),
	}
	if !cfg.fast {
		opts = append(opts, rnglab.WithPacer(rnglab.ClassicPacer()))
	}
	s, err := lab.NewSession(ctx, tid, sc.Scope(cfg.user), opts...)
	if err != nil {
		return err
	}
	defer s.Close()

	out := newScreen(w)
	if cfg.buy {
		_, err := s.PurchaseBuff(ctx)
		out.buff(s, err)
	}
	if cfg.toggle {
		_, err := s.ToggleBuff(ctx)
		out.buff(s, err)
	}

	p := &cliPresenter{sc: out}
	for i := 0; i < cfg.n; i++ {
		if _, err := s.Roll(ctx, p); err != nil {
			if errors.Is(err, errs.ErrRollCanceled) {
				out.println("\nroll canceled, nothing recorded")
				break
			}
			return err
		}
	}
	out.stats(s)
	if s.Degraded() {
		out.println("warning: state could not be saved, this session is in-memory only")
	}
	return nil
}
