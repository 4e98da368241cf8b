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

package app

import (
	"context"
	"errors"
	"testing"
)

type blockComp struct {
	stop     chan struct{}
	shutdown bool
}

func (b *blockComp) Run() error {
	<-b.stop
	return nil
}

func (b *blockComp) Shutdown(context.Context) error {
	b.shutdown = true
	close(b.stop)
	return nil
}

type failComp struct{}

func (failComp) Run() error                     { return errors.New("listen failed") }
func (failComp) Shutdown(context.Context) error { return nil }

func TestRunContextShutsDownAndRunsHooks(t *testing.T) {
	c := &blockComp{stop: make(chan struct{})}
	a := NewWith(c)
	var order []string
	a.OnShutdown(func(context.Context) error { order = append(order, "runtime"); return nil })
	a.OnShutdown(func(context.Context) error { order = append(order, "store"); return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := a.RunContext(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.shutdown {
		t.Fatalf("component not shut down")
	}
	if len(order) != 2 || order[0] != "runtime" || order[1] != "store" {
		t.Fatalf("hooks order: %v", order)
	}
}

func TestRunContextReturnsComponentError(t *testing.T) {
	a := NewWith(failComp{})
	if err := a.RunContext(context.Background()); err == nil {
		t.Fatalf("expected component error")
	}
}
