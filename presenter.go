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
package rnglab

import (
	"context"
	"time"

	"github.com/zintix-labs/rnglab/sdk/achieve"
	"github.com/zintix-labs/rnglab/sdk/table"
)

// Presenter 接收抽卡過程的通知（動畫、終端輸出、推播等）。
//
// 任何方法回傳錯誤或 panic 都會被 Session 攔下並記錄為 ErrPresentationFault，
// 不會影響已提交的狀態。
type Presenter interface {
	// FakeDraw 第 i 個假抽（只供呈現，不計入統計）。
	FakeDraw(ctx context.Context, i int, t table.Tier) error
	// Outcome 真實抽卡結果，狀態已寫回。
	Outcome(ctx context.Context, o Outcome) error
	// Achievement 本次新解鎖的成就，每個一次。
	Achievement(ctx context.Context, a achieve.Achievement) error
}

// NopPresenter 忽略所有通知。
type NopPresenter struct{}

func (NopPresenter) FakeDraw(context.Context, int, table.Tier) error        { return nil }
func (NopPresenter) Outcome(context.Context, Outcome) error                 { return nil }
func (NopPresenter) Achievement(context.Context, achieve.Achievement) error { return nil }

// Pacer 在第 i 個假抽呈現前等待；回傳錯誤（通常是 ctx 取消）即中止這次抽卡。
type Pacer func(ctx context.Context, i int) error

// StepPacer 第 i 個假抽前等待 base + i*step。
func StepPacer(base, step time.Duration) Pacer {
	return func(ctx context.Context, i int) error {
		t := time.NewTimer(base + time.Duration(i)*step)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}
}

// ClassicPacer 假抽節奏：40ms 起跳，每次多 30ms。
func ClassicPacer() Pacer {
	return StepPacer(40*time.Millisecond, 30*time.Millisecond)
}
