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
	"crypto/rand"
	"flag"
	"log"
	"math"
	"math/big"
	"os"

	"github.com/zintix-labs/rnglab"
	"github.com/zintix-labs/rnglab/demo/demo_configs"
	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/sdk/core"
	"github.com/zintix-labs/rnglab/sdk/perf"
	"github.com/zintix-labs/rnglab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	table  string
	worker int
	rolls  int
	buff   bool
	seed   int64
	format string
	pprof  perf.Mode
}

func bindVar() {
	var pmode string
	flag.StringVar(&cfg.table, "table", "apollo", "target table (name or id)")
	flag.IntVar(&cfg.worker, "worker", 1, "number of workers (independent roll sequences)")
	flag.IntVar(&cfg.rolls, "rolls", 10000000, "rolls per worker")
	flag.BoolVar(&cfg.buff, "buff", false, "simulate with the buff active")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")
	flag.StringVar(&cfg.format, "o", "", "extra report output: '', json, yaml")
	flag.StringVar(&pmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()

	m, err := perf.ParseMode(pmode)
	if err != nil {
		log.Fatal(err)
	}
	cfg.pprof = m

	// given seed illegal -> random seed
	if cfg.seed < 1 {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			log.Fatal(err)
		}
		cfg.seed = seed.Int64()
	}
}

// 這裡解析並執行模擬器
func executeSimulator() error {
	if err := cfg.valid(); err != nil {
		return err
	}
	render, err := stats.ParseRender(cfg.format)
	if err != nil {
		return err
	}

	lab, err := rnglab.NewAuto(core.Default(), rnglab.Configs(demo_configs.FS))
	if err != nil {
		return err
	}
	tid, err := lab.Resolve(cfg.table)
	if err != nil {
		return err
	}
	s, err := lab.NewSimulatorWithSeed(tid, cfg.seed)
	if err != nil {
		return err
	}
	ent, _ := lab.EntryByID(tid)

	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)
	p.Printf("%s[TABLE:%s] [WORKERS:%d] [ROLLS:%d] [BUFF:%v] [SEED:%d]%s\n",
		green, ent.Name, cfg.worker, cfg.worker*cfg.rolls, cfg.buff, cfg.seed, reset)

	var rep *stats.RollReport
	if cfg.worker == 1 {
		r, used, err := s.Sim(cfg.rolls, cfg.buff, true)
		if err != nil {
			return err
		}
		r.StdOut(used)
		rep = r
	} else {
		r, used, err := s.SimMP(cfg.rolls, cfg.worker, cfg.buff, true)
		if err != nil {
			return err
		}
		r.StdOut(used)
		rep = r
	}

	if render == nil {
		return nil
	}
	return rep.WriteWith(os.Stdout, render)
}

func (cfg *config) valid() error {
	if cfg.worker < 1 {
		return errs.NewWarn("value err : workers must > 0")
	}
	if cfg.rolls < 1 {
		return errs.NewWarn("value err : rolls must > 0")
	}
	return nil
}
