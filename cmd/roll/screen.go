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
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/rnglab"
	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/sdk/achieve"
	"github.com/zintix-labs/rnglab/sdk/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	reset     = "\033[0m"
	bold      = "\033[1m"
	hidden    = "???"
	nameWidth = 12
)

var named = map[string]string{
	"gray":   "\033[90m",
	"green":  "\033[32m",
	"blue":   "\033[34m",
	"purple": "\033[35m",
	"red":    "\033[31m",
	"orange": "\033[38;5;208m",
	"yellow": "\033[33m",
}

// ansi 支援具名顏色與 #rrggbb（24-bit）；無法辨識時不上色。
func ansi(color string) string {
	if c, ok := named[strings.ToLower(color)]; ok {
		return c
	}
	if len(color) == 7 && color[0] == '#' {
		v, err := strconv.ParseUint(color[1:], 16, 32)
		if err == nil {
			return fmt.Sprintf("\033[38;2;%d;%d;%dm", v>>16&0xff, v>>8&0xff, v&0xff)
		}
	}
	return ""
}

func paint(t table.Tier, s string) string {
	c := ansi(t.Color)
	if c == "" {
		return s
	}
	return c + s + reset
}

// pad 以顯示寬度補空白，寬字元也能對齊。
func pad(s string, w int) string {
	return s + strings.Repeat(" ", max(0, w-runewidth.StringWidth(s)))
}

type screen struct {
	w io.Writer
	p *message.Printer
}

func newScreen(w io.Writer) *screen {
	return &screen{w: w, p: message.NewPrinter(language.English)}
}

func (sc *screen) println(a ...any) {
	fmt.Fprintln(sc.w, a...)
}

// stats 總抽數、各 Tier（未抽中顯示 ???）、保底進度、buff 與成就。
func (sc *screen) stats(s *rnglab.Session) {
	snap := s.Snapshot()
	ts := s.Setting()
	tb := s.Table()

	sc.p.Fprintf(sc.w, "\n%sTotal rolls: %d%s\n", bold, snap.Stats.TotalOf(tb.Names()), reset)
	for _, t := range tb.Tiers() {
		n := snap.Stats[t.Name]
		name := hidden
		if n > 0 {
			name = paint(t, pad(t.Name, nameWidth))
		} else {
			name = pad(name, nameWidth)
		}
		sc.p.Fprintf(sc.w, "  %s 1 in %-8d x%d\n", name, t.Odds, n)
	}

	if prog := s.Progress(); len(prog) > 0 {
		sc.println("Pity:")
		for _, pg := range prog {
			mark := ""
			if pg.Active {
				mark = fmt.Sprintf("  (x%g active)", pg.Boost)
			}
			sc.p.Fprintf(sc.w, "  %s %d/%d%s\n", pad(pg.Tier, nameWidth), pg.Count, pg.Threshold, mark)
		}
	}

	sc.println(buffText(snap.Economy.BuffOwned, snap.Economy.BuffActive, ts.Economy.Toggleable,
		ts.Economy.BuffCost, ts.Economy.BuffMultiplier, snap.Economy.RollCount, sc.p))

	if list := ts.AchieveEngine().List(); len(list) > 0 {
		sc.println("Achievements:")
		for _, a := range list {
			box := "[ ]"
			if snap.Achievements[a.ID] {
				box = "[x]"
			}
			sc.p.Fprintf(sc.w, "  %s %s\n", box, a.Title)
		}
	}
}

func buffText(owned, active, toggleable bool, cost int, mult float64, balance int, p *message.Printer) string {
	switch {
	case active:
		return p.Sprintf("Buff: active (x%g)", mult)
	case owned && toggleable:
		return "Buff: owned, off (-toggle to enable)"
	default:
		return p.Sprintf("Buff: costs %d rolls (balance %d, -buy to purchase)", cost, balance)
	}
}

func (sc *screen) buff(s *rnglab.Session, err error) {
	if err == nil {
		e := s.Snapshot().Economy
		if e.BuffActive {
			sc.println("buff enabled")
		} else {
			sc.println("buff disabled")
		}
		return
	}
	if e, ok := errs.AsErr(err); ok {
		sc.println("buff:", e.Message)
		return
	}
	sc.println("buff:", err)
}

// cliPresenter 假抽以 \r 原地覆寫，結果換行保留。
type cliPresenter struct {
	sc *screen
}

func (c *cliPresenter) FakeDraw(_ context.Context, _ int, t table.Tier) error {
	_, err := fmt.Fprintf(c.sc.w, "\r  %s", paint(t, pad(t.Name, nameWidth)))
	return err
}

func (c *cliPresenter) Outcome(_ context.Context, o rnglab.Outcome) error {
	_, err := c.sc.p.Fprintf(c.sc.w, "\r%s#%d%s %s 1 in %d\n", bold, o.Seq, reset, paint(o.Tier, pad(o.Tier.Name, nameWidth)), o.Tier.Odds)
	return err
}

func (c *cliPresenter) Achievement(_ context.Context, a achieve.Achievement) error {
	_, err := fmt.Fprintf(c.sc.w, "  %sachievement unlocked:%s %s\n", bold, reset, a.Title)
	return err
}
