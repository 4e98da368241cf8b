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

// ops 是 Makefile 的跨平台替代：go run scripts/ops.go [task]
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// ANSI 顏色代碼 (Windows 10+ 的 cmd/powershell 皆支援)
const (
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorReset  = "\033[0m"
)

func printColor(color, msg string) { fmt.Printf("%s%s%s\n", color, msg, colorReset) }

// filter 決定輸出行要不要印；nil 表示直接導到終端。
type filter func(line string) bool

type task struct {
	desc   string
	clean  bool // 先 go clean -testcache
	args   []string
	filter filter
}

// 只留 ok / FAIL 與建置錯誤
func summaryOnly(line string) bool {
	return strings.HasPrefix(line, "ok") || strings.HasPrefix(line, "FAIL") ||
		strings.Contains(line, "build failed") || strings.Contains(line, "setup failed")
}

func skipNoTests(line string) bool {
	return !strings.Contains(line, "[no test files]")
}

var tasks = map[string]task{
	"test":        {"tests, summary only", true, []string{"test", "./...", "-cover", "-count=1"}, summaryOnly},
	"test-all":    {"tests with coverage", true, []string{"test", "./...", "-cover"}, nil},
	"test-detail": {"verbose tests", true, []string{"test", "./...", "-v", "-count=1"}, skipNoTests},
	"race":        {"tests under the race detector", true, []string{"test", "./...", "-race", "-count=1"}, summaryOnly},
	"sim":         {"10M rolls on apollo with 4 workers", false, []string{"run", "./cmd/run", "-worker", "4", "-rolls", "2500000"}, nil},
	"serve":       {"dev server on :5808", false, []string{"run", "./cmd/svr"}, nil},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	t, ok := tasks[os.Args[1]]
	if !ok {
		printColor(colorYellow, "Unknown task: "+os.Args[1])
		usage()
		os.Exit(1)
	}
	printColor(colorGreen, "running "+t.desc)
	if t.clean {
		if err := exec.Command("go", "clean", "-testcache").Run(); err != nil {
			printColor(colorRed, "go clean -testcache failed: "+err.Error())
		}
	}
	if err := runGo(t.args, t.filter); err != nil {
		printColor(colorRed, "\n"+os.Args[1]+" finished with errors: "+err.Error())
		os.Exit(1) // 告訴 Makefile 失敗了
	}
}

func usage() {
	fmt.Println("Usage: go run scripts/ops.go [task]")
	names := make([]string, 0, len(tasks))
	for name := range tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-12s %s\n", name, tasks[name].desc)
	}
}

// runGo 執行 go 子命令；有 filter 時合併 stdout/stderr 逐行過濾並上色。
func runGo(args []string, keep filter) error {
	cmd := exec.Command("go", args...)
	if keep == nil {
		cmd.Stdout, cmd.Stderr, cmd.Stdin = os.Stdout, os.Stderr, os.Stdin
		return cmd.Run()
	}

	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return err
	}
	sc := bufio.NewScanner(pipe)
	for sc.Scan() {
		line := sc.Text()
		if !keep(line) {
			continue
		}
		switch {
		case strings.HasPrefix(line, "ok"):
			printColor(colorGreen, line)
		case strings.HasPrefix(line, "FAIL"), strings.Contains(line, "failed"):
			printColor(colorRed, line)
		default:
			fmt.Println(line)
		}
	}
	if err := sc.Err(); err != nil {
		printColor(colorRed, "scanner error: "+err.Error())
	}
	return cmd.Wait()
}
