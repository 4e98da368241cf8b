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

package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/zintix-labs/rnglab/errs"
)

func TestParseMode(t *testing.T) {
	for in, want := range map[string]LogMode{"dev": ModeDev, " PROD ": ModeProd, "silence": ModeSilence} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("loud"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
	if ModeProd.String() != "prod" {
		t.Fatalf("String: %s", ModeProd)
	}
}

func TestAsyncHandlerDrainsOnClose(t *testing.T) {
	var buf bytes.Buffer
	ah := NewAsyncHandler(slog.NewTextHandler(&buf, nil), 16)
	log := slog.New(ah).With("user", "alice")
	for i := 0; i < 5; i++ {
		log.Info("roll committed", "seq", i)
	}
	ah.Close()
	if got := strings.Count(buf.String(), "roll committed"); got != 5 {
		t.Fatalf("expected 5 records after drain, got %d", got)
	}
	if !strings.Contains(buf.String(), "user=alice") {
		t.Fatalf("attrs lost: %s", buf.String())
	}
	log.Info("after close")
	if ah.Dropped() != 1 {
		t.Fatalf("records after close should be dropped, got %d", ah.Dropped())
	}
}

func TestExpandErr(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{ReplaceAttr: expandErr}))
	cause := errors.New("disk full")
	log.Warn("persist failed", "err", errs.Kind(errs.ErrPersistenceUnavailable, cause, "stats"))
	out := buf.String()
	for _, want := range []string{`err.msg="persistence unavailable"`, "err.lv=log", "err.extra=stats", `err.cause="disk full"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in %s", want, out)
		}
	}

	buf.Reset()
	log.Info("plain", "err", cause, "n", 3)
	if !strings.Contains(buf.String(), `err="disk full"`) || !strings.Contains(buf.String(), "n=3") {
		t.Fatalf("non-errs values should pass through: %s", buf.String())
	}
}
