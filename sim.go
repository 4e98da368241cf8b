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

package rnglab

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/recorder"
	"github.com/zintix-labs/rnglab/sdk/core"
	"github.com/zintix-labs/rnglab/sdk/drawer"
	"github.com/zintix-labs/rnglab/sdk/pity"
	"github.com/zintix-labs/rnglab/spec"
	"github.com/zintix-labs/rnglab/stats"
)

const capPrepare int = 100

// 每抽 simChunk 次檢查一次 ctx
const simChunk = 1 << 12

// Simulator 大量真實抽卡（無假抽、無持久化），保底照常推進，產出統計報表。
type Simulator struct {
	TableName string   // 表格名稱
	TableID   spec.TID // 表格 id
	ts        *spec.TableSetting
	drawer    *drawer.Drawer
	cf        core.Factory
	initSeed  int64
	seedmaker *seedMaker
	cBuf      []*core.Core             // 併發執行的亂數核心
	rBuf      []*recorder.RollRecorder // 併發紀錄員
}

func newSimulator(ts *spec.TableSetting, cf core.Factory, seed int64) (*Simulator, error) {
	if ts == nil || ts.Table() == nil {
		return nil, errs.NewFatal("table setting not initialized")
	}
	if cf == nil {
		return nil, errs.NewFatal("core factory required")
	}
	s := &Simulator{
		TableName: ts.TableName,
		TableID:   ts.TableID,
		ts:        ts,
		drawer:    drawer.New(ts.Table(), ts.PityEngine()),
		cf:        cf,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		cBuf:      make([]*core.Core, 1, capPrepare),
		rBuf:      make([]*recorder.RollRecorder, 0, capPrepare),
	}
	s.cBuf[0] = core.New(cf.New(seed))
	return s, nil
}

// Seed 初始 seed，同一個 seed 的 Sim 結果一致。
func (s *Simulator) Seed() int64 { return s.initSeed }

// Sim 單線模擬：連續抽 rolls 次並回傳統計結果與用時。
func (s *Simulator) Sim(rolls int, buff bool, showpb bool) (*stats.RollReport, time.Duration, error) {
	return s.SimContext(context.Background(), rolls, buff, showpb)
}

// SimContext 同 Sim；ctx 取消時中止並回傳 errs.ErrRollCanceled。
func (s *Simulator) SimContext(ctx context.Context, rolls int, buff bool, showpb bool) (*stats.RollReport, time.Duration, error) {
	defer s.reset()
	if rolls < 1 {
		return nil, 0, errs.NewWarn("rolls must > 0")
	}
	r, err := recorder.NewRollRecorder(s.ts, buff)
	if err != nil {
		return nil, 0, err
	}
	s.rBuf = append(s.rBuf, r)

	bar := pb.StartNew(rolls)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	err = s.run(ctx, s.cBuf[0], r, rolls, buff, bar)
	used := time.Since(bar.StartTime())
	bar.Finish()
	if err != nil {
		return nil, used, errs.Kind(errs.ErrRollCanceled, err, "simulation")
	}
	result := r.Done()
	result.Done()

	return result, used, nil
}

// SimMP 平行執行 mp 條抽卡序列，每條 rolls 次，合併統計結果後回傳。
//
// 每條序列有自己的保底計數，等同 mp 個獨立玩家。
func (s *Simulator) SimMP(rolls int, mp int, buff bool, showpb bool) (*stats.RollReport, time.Duration, error) {
	return s.SimMPContext(context.Background(), rolls, mp, buff, showpb)
}

// SimMPContext 同 SimMP；ctx 取消時所有 worker 在下一個檢查點停下。
func (s *Simulator) SimMPContext(ctx context.Context, rolls int, mp int, buff bool, showpb bool) (*stats.RollReport, time.Duration, error) {
	defer s.reset()
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if rolls < 1 {
		return nil, 0, errs.NewWarn("rolls must > 0")
	}
	for len(s.cBuf) < mp {
		s.cBuf = append(s.cBuf, core.New(s.cf.New(s.seedmaker.next())))
	}
	for len(s.rBuf) < mp {
		r, err := recorder.NewRollRecorder(s.ts, buff)
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(rolls * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	var canceled atomic.Pointer[error]
	for i := 0; i < mp; i++ {
		go func(i int) {
			defer wg.Done()
			if err := s.run(ctx, s.cBuf[i], s.rBuf[i], rolls, buff, bar); err != nil {
				canceled.CompareAndSwap(nil, &err)
			}
		}(i)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()
	if err := canceled.Load(); err != nil {
		return nil, used, errs.Kind(errs.ErrRollCanceled, *err, "simulation")
	}

	st, err := recorder.MergeRollRecorder(s.rBuf[:mp])
	if err != nil {
		return nil, 0, err
	}
	result := st.Done()
	result.Done()

	return result, used, nil
}

// run 熱路徑：抽選、紀錄、原地推進保底。每 simChunk 抽檢查一次 ctx。
func (s *Simulator) run(ctx context.Context, c *core.Core, r *recorder.RollRecorder, rolls int, buff bool, bar *pb.ProgressBar) error {
	mult := 1.0
	if buff {
		mult = s.ts.Economy.BuffMultiplier
	}
	pe := s.drawer.Pity()
	tb := s.drawer.Table()
	counters := pity.Counters{}
	for i := 0; i < rolls; i++ {
		if i%simChunk == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		idx := s.drawer.DrawIndex(c, counters, mult)
		name := tb.At(idx).Name
		r.Record(idx, pe.Multiplier(name, counters) != 1)
		pe.Step(counters, name)
		bar.Increment()
	}
	return nil
}

func (s *Simulator) reset() {
	s.rBuf = s.rBuf[:0]
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// next 以全週期 LCG 推進 state，再用可逆 mix63 打散。
//
// Session 與 Runtime 可能同時呼叫，state 的推進以 CAS 迴圈保證每次取得唯一的下一個值。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()                                            // always masked
		next := (old*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next)) // 一定非負
		}
	}
}

// mix63：只用可逆的 bit 操作與乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
