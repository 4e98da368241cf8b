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

// Package rnglab 提供抽卡模擬核心的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Lab 把兩個必需的地基組裝在一起：
//  1. Catalog：稀有度表目錄，定義有哪些表、各自對應的設定檔名稱（ConfigName）。
//  2. core.Factory：亂數核心工廠，同一個 seed 產生同一條序列。
//
// 由 Lab 建立的物件：
//   - Session：單一使用者的抽卡流程（假抽、提交、保底、成就、buff 經濟），狀態寫回 state.Store。
//   - Runtime：綁定一張表，依使用者懶建立 Session，供後端服務使用。
//   - Simulator：不經過 Session 的大量抽卡，產出統計報表。
//
// Lab 不綁定任何檔案路徑：設定檔來源一律以 fs.FS 注入（go:embed 或 os.DirFS）。
package rnglab

import (
	"context"
	"crypto/rand"
	"io/fs"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/zintix-labs/rnglab/catalog"
	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/sdk/core"
	"github.com/zintix-labs/rnglab/spec"
	"github.com/zintix-labs/rnglab/state"
)

// Configs 把一或多個設定檔來源打包成 New() 需要的參數。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Lab 組裝器。
//
// 使用流程分成兩階段：
//   - 註冊階段：建立 catalog、註冊表格、檢查重複。
//   - 執行階段：Freeze 之後才能建立 Session / Simulator / Runtime。
//
//	lab, _ := rnglab.NewAuto(core.Default(), rnglab.Configs(demo_configs.FS))
//	s, _ := lab.NewSession(ctx, 4, memstore.New().Scope("alice"))
//	out, _ := s.Roll(ctx, nil)
type Lab struct {
	cat  *catalog.Catalog
	cf   core.Factory
	base int64
	seed *seedMaker
	sum  []catalog.Summary
}

// New 建立一個 Lab，seed 由 crypto/rand 產生。
func New(cf core.Factory, cfgs []fs.FS) (*Lab, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return nil, errs.Wrap(err, "seed generation failed")
	}
	return NewWithSeed(cf, cfgs, seed.Int64())
}

// NewWithSeed 與 New 相同，但由呼叫端指定 baseSeed；所有子 seed 都由它派生，可完整重現。
func NewWithSeed(cf core.Factory, cfgs []fs.FS, seed int64) (*Lab, error) {
	if cf == nil {
		return nil, errs.NewFatal("core factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	return &Lab{
		cat:  cata,
		cf:   cf,
		base: seed,
		seed: newSeedMaker(seed),
	}, nil
}

// NewAuto 掃描所有設定檔註冊後直接 Freeze，進入執行階段。
func NewAuto(cf core.Factory, cfgs []fs.FS) (*Lab, error) {
	lab, err := New(cf, cfgs)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (l *Lab) Register(ents ...catalog.Entry) error {
	return l.cat.Register(ents...)
}

// RegisterAll 解析所有設定檔並一次性註冊（fail-fast，全部成功才寫入）。
func (l *Lab) RegisterAll() error {
	return l.cat.RegisterAll()
}

func (l *Lab) Freeze() {
	l.cat.Freeze()
}

func (l *Lab) BaseSeed() int64 { return l.base }

func (l *Lab) EntryByID(id spec.TID) (catalog.Entry, bool) {
	return l.cat.GetByID(id)
}

func (l *Lab) EntryByName(name string) (catalog.Entry, bool) {
	return l.cat.GetByName(name)
}

func (l *Lab) IDs() []spec.TID {
	return l.cat.IDs()
}

func (l *Lab) All() []catalog.Entry {
	return l.cat.All()
}

// Summary 所有已註冊表格的摘要（依 TID 排序），結果會快取。
func (l *Lab) Summary() ([]catalog.Summary, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	if l.sum != nil {
		return l.sum, nil
	}
	ids := l.cat.IDs()
	cs := make([]catalog.Summary, 0, len(ids))
	for _, id := range ids {
		ts, err := l.cat.TableSettingByID(id)
		if err != nil {
			return nil, errs.Wrap(err, "parse table setting failed")
		}
		cs = append(cs, catalog.SummaryOf(ts))
	}
	l.sum = cs
	return l.sum, nil
}

// Resolve 接受表格名稱（不分大小寫）或數字 id，回傳已註冊的 TID。
func (l *Lab) Resolve(s string) (spec.TID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errs.NewWarn("table required")
	}
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		if _, ok := l.EntryByID(spec.TID(n)); ok {
			return spec.TID(n), nil
		}
		return 0, errs.Warnf("table id %d not registered", n)
	}
	ent, ok := l.EntryByName(s)
	if !ok {
		return 0, errs.Warnf("table %q not registered", s)
	}
	return ent.TID, nil
}

// Setting 依 TID 取得已初始化的表格設定。
func (l *Lab) Setting(id spec.TID) (*spec.TableSetting, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	return l.cat.TableSettingByID(id)
}

// SettingByName 名稱比對不分大小寫。
func (l *Lab) SettingByName(name string) (*spec.TableSetting, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	return l.cat.TableSettingByName(name)
}

// NewSession 建立一個 Session，並從 st 載入狀態。
//
// seed 由 Lab 的 baseSeed 派生；要重現請用 NewSessionWithSeed。
func (l *Lab) NewSession(ctx context.Context, id spec.TID, st state.Store, opts ...Option) (*Session, error) {
	return l.NewSessionWithSeed(ctx, id, l.seed.next(), st, opts...)
}

func (l *Lab) NewSessionWithSeed(ctx context.Context, id spec.TID, seed int64, st state.Store, opts ...Option) (*Session, error) {
	ts, err := l.Setting(id)
	if err != nil {
		return nil, err
	}
	return newSession(ctx, ts, l.cf, seed, st, opts...)
}

func (l *Lab) NewSimulator(id spec.TID) (*Simulator, error) {
	return l.NewSimulatorWithSeed(id, l.seed.next())
}

func (l *Lab) NewSimulatorWithSeed(id spec.TID, seed int64) (*Simulator, error) {
	ts, err := l.Setting(id)
	if err != nil {
		return nil, err
	}
	return newSimulator(ts, l.cf, seed)
}

// NewSimulatorByYAML 以臨時設定建立模擬器（不需註冊於 catalog）。
func (l *Lab) NewSimulatorByYAML(raw []byte, seed int64) (*Simulator, error) {
	ts, err := spec.GetTableSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	return newSimulator(ts, l.cf, seed)
}

func (l *Lab) NewSimulatorByJSON(raw []byte, seed int64) (*Simulator, error) {
	ts, err := spec.GetTableSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	return newSimulator(ts, l.cf, seed)
}

// NewRuntime 綁定一張表建立 Runtime；每個使用者的狀態存放在 sc.Scope(user)。
func (l *Lab) NewRuntime(id spec.TID, sc state.Scoper, opts ...Option) (*Runtime, error) {
	// 進入 runtime 前，catalog 必須 Freeze
	l.Freeze()
	if sc == nil {
		return nil, errs.NewFatal("state scoper required")
	}
	ts, err := l.Setting(id)
	if err != nil {
		return nil, err
	}
	return newRuntime(l, ts, sc, opts...), nil
}
