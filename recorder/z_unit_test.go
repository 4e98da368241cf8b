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
package recorder

import (
	"testing"

	"github.com/zintix-labs/rnglab/spec"
)

func TestRecordGaps(t *testing.T) {
	r, err := NewRollRecorder(spec.Default(), false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	// Common, Common, Rare, Common, Rare
	for _, idx := range []int{0, 0, 2, 0, 2} {
		r.Record(idx, false)
	}
	r.Record(6, true)
	if r.Rolls != 6 || r.Counts[0] != 3 || r.Counts[2] != 2 || r.PityHits[6] != 1 {
		t.Fatalf("unexpected counts %+v", r.Counts)
	}
	// Rare gaps: 3, 2
	if r.GapN[2] != 2 || r.GapSum[2] != 5 || r.GapSqSum[2] != 13 || r.MaxGap[2] != 3 {
		t.Fatalf("unexpected rare gaps n=%d sum=%d sq=%d max=%d", r.GapN[2], r.GapSum[2], r.GapSqSum[2], r.MaxGap[2])
	}
}

func TestMergeAndDone(t *testing.T) {
	ts := spec.Default()
	a, _ := NewRollRecorder(ts, true)
	b, _ := NewRollRecorder(ts, true)
	a.Record(0, false)
	b.Record(1, false)
	b.Record(0, false)
	m, err := MergeRollRecorder([]*RollRecorder{a, b})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if m.Rolls != 3 || m.Counts[0] != 2 || m.Counts[1] != 1 {
		t.Fatalf("unexpected merge %+v", m.Counts)
	}
	c, _ := NewRollRecorder(ts, false)
	if _, err := MergeRollRecorder([]*RollRecorder{a, c}); err == nil {
		t.Fatalf("expected buff mismatch error")
	}
	rep := m.Done()
	rep.Done()
	common, ok := rep.Tier("Common")
	if !ok || common.Count != 2 || common.Rate != 2.0/3 {
		t.Fatalf("unexpected common report %+v", common)
	}
	if !rep.Summary.Buff || rep.Summary.Rolls != 3 {
		t.Fatalf("unexpected summary %+v", rep.Summary)
	}
}
