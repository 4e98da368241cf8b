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
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func report(counts map[string]int, base map[string]float64, order []string) *RollReport {
	r := &RollReport{Summary: &SummaryReport{TableName: "t"}}
	for _, name := range order {
		r.Summary.Rolls += counts[name]
		r.Tiers = append(r.Tiers, &TierReport{Name: name, Count: counts[name], BaseRate: base[name]})
	}
	return r
}

func TestRateInterval(t *testing.T) {
	ci := rateInterval(0, 100, 0.95)
	if ci.Lo != 0 || ci.Hi <= 0 || ci.Hi > 0.05 {
		t.Fatalf("unexpected k=0 interval %+v", ci)
	}
	ci = rateInterval(50, 100, 0.95)
	if !ci.Contains(0.5) || ci.Lo < 0.38 || ci.Hi > 0.62 {
		t.Fatalf("unexpected interval %+v", ci)
	}
	if ci = rateInterval(10, 10, 0.95); ci.Hi != 1 {
		t.Fatalf("k==n should have Hi=1, got %+v", ci)
	}
	if ci = rateInterval(0, 0, 0.95); ci != (CI{0, 1}) {
		t.Fatalf("empty sample should span [0,1], got %+v", ci)
	}
}

func TestGapMoments(t *testing.T) {
	m, s := gapMoments(2, 5, 13)
	if m != 2.5 || math.Abs(s-math.Sqrt(0.5)) > 1e-12 {
		t.Fatalf("unexpected moments %v %v", m, s)
	}
	if m, s := gapMoments(0, 0, 0); m != 0 || s != 0 {
		t.Fatalf("empty moments should be zero")
	}
}

func TestDoneGoodnessOfFit(t *testing.T) {
	order := []string{"A", "B", "C"}
	base := map[string]float64{"A": 0.5, "B": 0.25, "C": 0.25}
	fit := report(map[string]int{"A": 5000, "B": 2500, "C": 2500}, base, order)
	fit.Done()
	if fit.Summary.ChiSquare != 0 || fit.Summary.ChiDF != 2 || fit.Summary.PValue < 0.99 {
		t.Fatalf("perfect fit expected, got %+v", fit.Summary)
	}
	skew := report(map[string]int{"A": 3000, "B": 3500, "C": 3500}, base, order)
	skew.Done()
	if skew.Summary.PValue > 1e-6 {
		t.Fatalf("skewed sample should reject, got p=%v", skew.Summary.PValue)
	}
	a, _ := skew.Tier("A")
	if a.Rate != 0.3 || a.AtBase {
		t.Fatalf("unexpected rate %v at base %v", a.Rate, a.AtBase)
	}
	if fa, _ := fit.Tier("A"); !fa.AtBase {
		t.Fatalf("perfect fit should keep base rate inside the interval")
	}
}

func TestRenders(t *testing.T) {
	r := report(map[string]int{"A": 3, "B": 1}, map[string]float64{"A": 0.75, "B": 0.25}, []string{"A", "B"})
	var buf bytes.Buffer
	if err := r.WriteWith(&buf, &JsonRollReportRender{}); err != nil {
		t.Fatalf("json: %v", err)
	}
	var back RollReport
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil || back.Summary.Rolls != 4 {
		t.Fatalf("json decode: %v %+v", err, back.Summary)
	}
	buf.Reset()
	if err := r.WriteWith(&buf, &YAMLRollReportRender{}); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(buf.String(), "TableName: t") {
		t.Fatalf("unexpected yaml:\n%s", buf.String())
	}
	tb := fmtTable("T", []string{"k"}, map[string]string{"k": "v"})
	if !strings.Contains(tb, "| k | v |") {
		t.Fatalf("unexpected table:\n%s", tb)
	}
}

func TestParseRender(t *testing.T) {
	if r, err := ParseRender(""); r != nil || err != nil {
		t.Fatalf("empty format should mean no render")
	}
	if _, err := ParseRender("csv"); err == nil {
		t.Fatalf("csv should be rejected")
	}
	r, err := ParseRender("YML")
	if err != nil {
		t.Fatalf("yml: %v", err)
	}
	rep := report(map[string]int{"A": 3, "B": 1}, map[string]float64{"A": 0.75, "B": 0.25}, []string{"A", "B"})
	var buf bytes.Buffer
	if err := rep.WriteWith(&buf, r); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "RateCI: {Lo: ") {
		t.Fatalf("interval should render inline:\n%s", buf.String())
	}
}
