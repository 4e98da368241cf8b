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

package v1

import (
	"net/http"

	"github.com/zintix-labs/rnglab"
	"github.com/zintix-labs/rnglab/catalog"
	"github.com/zintix-labs/rnglab/server/httperr"
	"github.com/zintix-labs/rnglab/spec"
)

// Tables GET /v1/tables 列出已註冊的表格與伺服器綁定的表格。
func Tables(lab *rnglab.Lab, bound spec.TID) http.HandlerFunc {
	type resp struct {
		Bound  spec.TID          `json:"bound"`
		Tables []catalog.Summary `json:"tables"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := lab.Summary()
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, resp{Bound: bound, Tables: sum})
	}
}
