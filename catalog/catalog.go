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
// Package catalog 管理稀有度表目錄：表 id / 名稱 與設定檔名的對應，
// 設定檔內容一律從一或多個扁平的 fs.FS 讀取。
package catalog

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/spec"
)

var (
	ErrDupID   = errs.NewFatal("duplicate table id")
	ErrDupName = errs.NewFatal("duplicate table name")
)

type Entry struct {
	TID        spec.TID
	Name       string
	ConfigName string
}

// Summary 對外列表用。
type Summary struct {
	TID            spec.TID `json:"tid"             yaml:"tid"`
	Name           string   `json:"name"            yaml:"name"`
	Tiers          []string `json:"tiers"           yaml:"tiers"`
	Pity           []string `json:"pity"            yaml:"pity"`
	BuffCost       int      `json:"buff_cost"       yaml:"buff_cost"`
	BuffMultiplier float64  `json:"buff_multiplier" yaml:"buff_multiplier"`
	Toggleable     bool     `json:"toggleable"      yaml:"toggleable"`
}

// SummaryOf 由已初始化的設定產生 Summary。
func SummaryOf(ts *spec.TableSetting) Summary {
	return Summary{
		TID:            ts.TableID,
		Name:           ts.TableName,
		Tiers:          ts.Table().Names(),
		Pity:           ts.PityEngine().Tracked(),
		BuffCost:       ts.Economy.BuffCost,
		BuffMultiplier: ts.Economy.BuffMultiplier,
		Toggleable:     ts.Economy.Toggleable,
	}
}

type Catalog struct {
	byID   map[spec.TID]Entry
	byName map[string]Entry
	ids    []spec.TID          // 穩定排序
	unique map[string]struct{} // 一個設定檔只能對應一張表
	config *multiFS
	frozen bool
}

func New(cfg ...fs.FS) (*Catalog, error) {
	mfs, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	return &Catalog{
		byID:   map[spec.TID]Entry{},
		byName: map[string]Entry{},
		unique: map[string]struct{}{},
		config: mfs,
	}, nil
}

// Register 全部檢查通過才寫入，不會留下只註冊一半的狀態。
func (c *Catalog) Register(entries ...Entry) error {
	if c.frozen {
		return errs.NewWarn("can not register when catalog already frozen")
	}
	seenID := map[spec.TID]struct{}{}
	seenName := map[string]struct{}{}
	seenCfg := map[string]struct{}{}
	for i := range entries {
		e := &entries[i]
		e.Name = normName(e.Name)
		if e.Name == "" {
			return errs.NewFatal("table name required")
		}
		if err := validFileName(e.ConfigName); err != nil {
			return err
		}
		if _, ok := c.config.index[e.ConfigName]; !ok {
			return errs.Fatalf("config file not found: %s", e.ConfigName)
		}
		if _, ok := c.byID[e.TID]; ok {
			return ErrDupID
		}
		if _, ok := seenID[e.TID]; ok {
			return ErrDupID
		}
		if _, ok := c.byName[e.Name]; ok {
			return ErrDupName
		}
		if _, ok := seenName[e.Name]; ok {
			return ErrDupName
		}
		_, used := c.unique[e.ConfigName]
		_, seen := seenCfg[e.ConfigName]
		if used || seen {
			return errs.Fatalf("duplicate config name: %s", e.ConfigName)
		}
		seenID[e.TID] = struct{}{}
		seenName[e.Name] = struct{}{}
		seenCfg[e.ConfigName] = struct{}{}
	}
	for _, e := range entries {
		c.unique[e.ConfigName] = struct{}{}
		c.byID[e.TID] = e
		c.byName[e.Name] = e
		c.ids = append(c.ids, e.TID)
	}
	sort.Slice(c.ids, func(i, j int) bool { return c.ids[i] < c.ids[j] })
	return nil
}

// RegisterAll 掃描所有設定檔，依檔名排序後逐一解析並以設定內的 id/名稱註冊。
// 任一檔案失敗即回傳錯誤，且不寫入任何項目。
func (c *Catalog) RegisterAll() error {
	names := c.config.Names()
	if len(names) == 0 {
		return errs.NewFatal("no config files found to register")
	}
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		ts, err := c.parse(name)
		if err != nil {
			return errs.WrapWithExtra(err, "parse table setting failed", name)
		}
		entries = append(entries, Entry{TID: ts.TableID, Name: ts.TableName, ConfigName: name})
	}
	return c.Register(entries...)
}

func (c *Catalog) GetByID(id spec.TID) (Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

func (c *Catalog) GetByName(name string) (Entry, bool) {
	e, ok := c.byName[normName(name)]
	return e, ok
}

func (c *Catalog) IDs() []spec.TID {
	if len(c.ids) == 0 {
		return nil
	}
	return append([]spec.TID(nil), c.ids...)
}

func (c *Catalog) All() []Entry {
	out := make([]Entry, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *Catalog) Freeze() {
	c.frozen = true
}

func (c *Catalog) IsFrozen() bool {
	return c.frozen
}

func (c *Catalog) TableSettingByID(id spec.TID) (*spec.TableSetting, error) {
	e, ok := c.GetByID(id)
	if !ok {
		return nil, errs.Warnf("table id %d does not exist in catalog", id)
	}
	return c.parse(e.ConfigName)
}

func (c *Catalog) TableSettingByName(name string) (*spec.TableSetting, error) {
	e, ok := c.GetByName(name)
	if !ok {
		return nil, errs.Warnf("table %q does not exist in catalog", name)
	}
	return c.parse(e.ConfigName)
}

func (c *Catalog) parse(configName string) (*spec.TableSetting, error) {
	src, ok := c.config.GetFS(configName)
	if !ok {
		return nil, errs.NewWarn("file name does not exist in catalog")
	}
	raw, err := fs.ReadFile(src, configName)
	if err != nil {
		return nil, errs.Wrap(err, "catalog read file error")
	}
	switch strings.ToLower(filepath.Ext(configName)) {
	case ".yaml", ".yml":
		return spec.GetTableSettingByYAML(raw)
	case ".json":
		return spec.GetTableSettingByJSON(raw)
	default:
		return nil, errs.Fatalf("unsupported config format: %q", configName)
	}
}

func normName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func validFileName(file string) error {
	if file == "" {
		return errs.NewFatal("empty config filename")
	}
	if strings.ContainsAny(file, `/\:`) {
		return errs.Fatalf("invalid config filename: %q (must be a basename)", file)
	}
	if strings.HasPrefix(file, ".") {
		return errs.Fatalf("invalid config filename: %q (cannot start with '.')", file)
	}
	if !isConfigName(file) {
		return errs.Fatalf("invalid config filename: %q (must end with .yaml, .yml, or .json)", file)
	}
	return nil
}

func isConfigName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// multiFS 把多個扁平 fs.FS 合併成以檔名為索引的單一來源；跨來源重名直接失敗。
type multiFS struct {
	src   []fs.FS
	index map[string]int
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	m := &multiFS{src: src, index: make(map[string]int, 16)}
	for i, s := range src {
		if s == nil {
			return nil, errs.Fatalf("fs[%d] is nil", i)
		}
		err := fs.WalkDir(s, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.Fatalf("config FS must be flat (no subdirectories): %q", path)
			}
			if strings.HasPrefix(path, ".") || !isConfigName(path) {
				return nil
			}
			if prev, ok := m.index[path]; ok {
				return errs.Fatalf("duplicate config %q in fs[%d] and fs[%d]", path, prev, i)
			}
			m.index[path] = i
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *multiFS) GetFS(name string) (fs.FS, bool) {
	if i, ok := m.index[name]; ok {
		return m.src[i], true
	}
	return nil, false
}

// Names 回傳排序後的設定檔名。
func (m *multiFS) Names() []string {
	out := make([]string, 0, len(m.index))
	for name := range m.index {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
