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
	"fmt"
	"io"
	"math"
	"time"

	"github.com/zintix-labs/rnglab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang language.Tag = language.English

// RollReport 抽卡模擬統計報告
type RollReport struct {
	Summary *SummaryReport `json:"Summary" yaml:"Summary"`
	Tiers   []*TierReport  `json:"Tiers"   yaml:"Tiers"`
	isDone  bool
}

type SummaryReport struct {
	TableName      string   `json:"TableName"      yaml:"TableName"`
	TableID        spec.TID `json:"TableID"        yaml:"TableID"`
	Rolls          int      `json:"Rolls"          yaml:"Rolls"`
	Buff           bool     `json:"Buff"           yaml:"Buff"`
	BuffMultiplier float64  `json:"BuffMultiplier" yaml:"BuffMultiplier"`
	PityHits       int      `json:"PityHits"       yaml:"PityHits"`
	ChiSquare      float64  `json:"ChiSquare"      yaml:"ChiSquare"` // 對無保底基礎機率的適合度檢定
	ChiDF          int      `json:"ChiDF"          yaml:"ChiDF"`
	PValue         float64  `json:"PValue"         yaml:"PValue"`
}

// TierReport 單一 Tier 的統計
//
// 紀錄時只累計整數，Done() 時才計算比率與區間
type TierReport struct {
	Name     string  `json:"Name"     yaml:"Name"`
	Odds     int     `json:"Odds"     yaml:"Odds"`
	Count    int     `json:"Count"    yaml:"Count"`
	BaseRate float64 `json:"BaseRate" yaml:"BaseRate"` // 無保底、無 buff 時的理論機率
	Rate     float64 `json:"Rate"     yaml:"Rate"`
	RateCI   CI      `json:"RateCI"   yaml:"RateCI"`
	AtBase   bool    `json:"AtBase"   yaml:"AtBase"` // BaseRate 落在 RateCI 內；保底或 buff 生效時常為 false
	PityHits int     `json:"PityHits" yaml:"PityHits"` // 保底倍率生效中抽中的次數
	GapN     int     `json:"-"        yaml:"-"`
	GapSum   int     `json:"-"        yaml:"-"`
	GapSqSum int     `json:"-"        yaml:"-"`
	GapMean  float64 `json:"GapMean"  yaml:"GapMean"` // 兩次命中之間的平均抽數
	GapStd   float64 `json:"GapStd"   yaml:"GapStd"`
	MaxGap   int     `json:"MaxGap"   yaml:"MaxGap"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 一次性計算比率、區間、間隔與適合度檢定，重複呼叫無作用。
func (r *RollReport) Done() {
	if r.isDone {
		return
	}
	n := r.Summary.Rolls
	pity := 0
	for _, t := range r.Tiers {
		if n > 0 {
			t.Rate = float64(t.Count) / float64(n)
		}
		t.RateCI = rateInterval(t.Count, n, 0.95)
		t.AtBase = t.RateCI.Contains(t.BaseRate)
		t.GapMean, t.GapStd = gapMoments(t.GapN, t.GapSum, t.GapSqSum)
		pity += t.PityHits
	}
	r.Summary.PityHits = pity
	r.Summary.ChiSquare, r.Summary.ChiDF, r.Summary.PValue = r.goodnessOfFit()
	r.isDone = true
}

// Tier 依名稱取得 TierReport。
func (r *RollReport) Tier(name string) (*TierReport, bool) {
	for _, t := range r.Tiers {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

func (r *RollReport) WriteWith(w io.Writer, rep RollReportRender) error {
	r.Done()
	return rep.Write(w, r)
}

// StdOut 以表格輸出摘要與各 Tier 統計。
func (r *RollReport) StdOut(ut time.Duration) {
	r.Done()
	fmt.Print(formatDuration(ut, r.Summary.Rolls))
	sk, sm := r.fmtBasic()
	fmt.Println(fmtTable(r.Summary.TableName, sk, sm))
	tk, tm := r.fmtTiers()
	fmt.Println(fmtTable("Tiers", tk, tm))
}

// ============================================================
// ** 內部方法 **
// ============================================================

// goodnessOfFit 以基礎機率為期望值做 Pearson 卡方檢定；期望次數 < 5 的 Tier 合併為一組。
// 保底會拉高稀有 Tier 的命中率，因此 p 值偏低是預期的。
func (r *RollReport) goodnessOfFit() (chi float64, df int, p float64) {
	n := float64(r.Summary.Rolls)
	if n == 0 {
		return 0, 0, 1
	}
	var obs, exp []float64
	var poolObs, poolExp float64
	for _, t := range r.Tiers {
		e := t.BaseRate * n
		if e < 5 {
			poolObs += float64(t.Count)
			poolExp += e
			continue
		}
		obs = append(obs, float64(t.Count))
		exp = append(exp, e)
	}
	if poolExp > 0 {
		obs = append(obs, poolObs)
		exp = append(exp, poolExp)
	}
	if len(obs) < 2 {
		return 0, 0, 1
	}
	chi = stat.ChiSquare(obs, exp)
	df = len(obs) - 1
	p = distuv.ChiSquared{K: float64(df)}.Survival(chi)
	return chi, df, p
}

// gapMoments 由累計和計算樣本平均與標準差。
func gapMoments(n, sum, sqSum int) (mean, std float64) {
	if n == 0 {
		return 0, 0
	}
	fn := float64(n)
	mean = float64(sum) / fn
	if n < 2 {
		return mean, 0
	}
	variance := (float64(sqSum) - float64(sum)*float64(sum)/fn) / (fn - 1)
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

func formatDuration(d time.Duration, rolls int) string {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	rps := int(float64(rolls) / sec)
	if sec < 60.0 {
		return p.Sprintf("used: %.2f seconds\nrps : %d rolls/sec\n", sec, rps)
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		return p.Sprintf("used: %dm %ds\nrps : %d rolls/sec\n", m, s, rps)
	}
	return p.Sprintf("used: %dh:%dm:%ds\nrps : %d rolls/sec\n", h, m, s, rps)
}

func (r *RollReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	buff := "off"
	if r.Summary.Buff {
		buff = p.Sprintf("x%.2f", r.Summary.BuffMultiplier)
	}
	basic := map[string]string{
		"Table":       r.Summary.TableName,
		"Table ID":    fmt.Sprintf("%d", r.Summary.TableID),
		"Total Rolls": p.Sprintf("%d", r.Summary.Rolls),
		"Buff":        buff,
		"Pity Hits":   p.Sprintf("%d", r.Summary.PityHits),
		"Chi-Square":  p.Sprintf("%.2f (df=%d)", r.Summary.ChiSquare, r.Summary.ChiDF),
		"p-value":     p.Sprintf("%.4g", r.Summary.PValue),
	}
	keys := []string{"Table", "Table ID", "Total Rolls", "Buff", "Pity Hits", "Chi-Square", "p-value"}
	return keys, basic
}

func (r *RollReport) fmtTiers() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	keys := make([]string, 0, len(r.Tiers))
	msg := make(map[string]string, len(r.Tiers))
	for _, t := range r.Tiers {
		keys = append(keys, t.Name)
		msg[t.Name] = p.Sprintf("%d  %.4f%% [%.4f%%,%.4f%%]  base %.4f%%  gap %.1f",
			t.Count, 100*t.Rate, 100*t.RateCI.Lo, 100*t.RateCI.Hi, 100*t.BaseRate, t.GapMean)
	}
	return keys, msg
}
