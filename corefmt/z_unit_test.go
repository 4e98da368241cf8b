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

package corefmt

import (
	"bytes"
	"errors"
	"testing"

	"github.com/zintix-labs/rnglab/errs"
	"github.com/zintix-labs/rnglab/sdk/core"
)

func TestSnapshotBase64URL(t *testing.T) {
	rng := core.Default().New(99)
	snap, err := rng.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	s := EncodeBase64URL(snap)
	back, err := DecodeBase64URL(s)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(snap, back) {
		t.Fatalf("snapshot changed through base64url")
	}
	if _, err := DecodeBase64URL("***"); !errors.Is(err, errs.ErrBadSnapshot) {
		t.Fatalf("expected bad snapshot, got %v", err)
	}
}

func TestHex(t *testing.T) {
	if EncodeHex([]byte{0xab, 0x01}) != "ab01" {
		t.Fatalf("hex encode")
	}
	if _, err := DecodeHex("zz"); !errors.Is(err, errs.ErrBadSnapshot) {
		t.Fatalf("expected bad snapshot, got %v", err)
	}
}
