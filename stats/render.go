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

package stats

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/rnglab/errs"
	"gopkg.in/yaml.v3"
)

type RollReportRender interface {
	Write(w io.Writer, r *RollReport) error
}

// ParseRender 依輸出格式取得 render；空字串回傳 nil（只印表格）。
func ParseRender(format string) (RollReportRender, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "":
		return nil, nil
	case "json":
		return &JsonRollReportRender{Indent: "  "}, nil
	case "yaml", "yml":
		return &YAMLRollReportRender{}, nil
	}
	return nil, errs.Warnf("unknown output format: %q", format)
}

// Json渲染；Indent 為空時輸出單行
type JsonRollReportRender struct {
	Indent string
}

func (jr *JsonRollReportRender) Write(w io.Writer, r *RollReport) error {
	enc := json.NewEncoder(w)
	if jr.Indent != "" {
		enc.SetIndent("", jr.Indent)
	}
	return enc.Encode(r)
}

// YAML渲染：RateCI 這類只含純量的小結構與純量陣列以 flow style 輸出，一個 Tier 一段。
type YAMLRollReportRender struct{}

func (yr *YAMLRollReportRender) Write(w io.Writer, r *RollReport) error {
	var node yaml.Node
	if err := node.Encode(r); err != nil {
		return err
	}
	flowLeaves(&node)
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

// flowLeaves 回傳 n 是否為純量；容器的子節點全為純量且不超過 4 個鍵值時改成 flow style。
func flowLeaves(n *yaml.Node) bool {
	if n == nil {
		return true
	}
	if n.Kind == yaml.ScalarNode || n.Kind == yaml.AliasNode {
		return true
	}
	leaf := true
	for _, c := range n.Content {
		if !flowLeaves(c) {
			leaf = false
		}
	}
	switch n.Kind {
	case yaml.SequenceNode:
		if leaf {
			n.Style = yaml.FlowStyle
		}
	case yaml.MappingNode:
		if leaf && len(n.Content) <= 8 {
			n.Style = yaml.FlowStyle
		}
	}
	return false
}

// fmtTable 兩欄表格，寬度以 runewidth 計算（Tier 名稱可能含全形字），title 置中。
func fmtTable(title string, keys []string, msg map[string]string) string {
	kw, vw := 0, 0
	for _, k := range keys {
		kw = max(kw, runewidth.StringWidth(k))
		vw = max(vw, runewidth.StringWidth(msg[k]))
	}
	inner := kw + vw + 5 // "| k | v |" 去掉外框後的寬度
	if tw := runewidth.StringWidth(title); tw > inner {
		vw += tw - inner
		inner = tw
	}
	rule := func(cols ...int) string {
		var sb strings.Builder
		for _, c := range cols {
			sb.WriteString("+" + strings.Repeat("-", c))
		}
		return sb.String() + "+\n"
	}

	var sb strings.Builder
	sb.WriteString(rule(inner))
	tw := runewidth.StringWidth(title)
	left := (inner - tw) / 2
	sb.WriteString("|" + strings.Repeat(" ", left) + runewidth.FillRight(title, inner-left) + "|\n")
	sb.WriteString(rule(kw+2, vw+2))
	for _, k := range keys {
		sb.WriteString("| " + runewidth.FillRight(k, kw) + " | " + runewidth.FillRight(msg[k], vw) + " |\n")
	}
	sb.WriteString(rule(kw+2, vw+2))
	return sb.String()
}
