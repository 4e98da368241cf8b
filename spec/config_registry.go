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
package spec

import (
	"bytes"
	"encoding/json"

	"github.com/zintix-labs/rnglab/errs"
	"gopkg.in/yaml.v3"
)

// GetTableSettingByYAML
// 嚴格解析 YAML（拼錯或多寫欄位即報錯），初始化並檢查後回傳。
func GetTableSettingByYAML(data []byte) (*TableSetting, error) {
	ts := &TableSetting{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(ts); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshal yaml")
	}
	if err := ts.init(); err != nil {
		return nil, errs.Wrap(err, "table setting initialized err")
	}
	return ts, nil
}

// GetTableSettingByJSON
// 同 GetTableSettingByYAML，來源為 JSON。
func GetTableSettingByJSON(data []byte) (*TableSetting, error) {
	ts := &TableSetting{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(ts); err != nil {
		return nil, errs.Wrap(err, "can not unmarshal json byte")
	}
	if err := ts.init(); err != nil {
		return nil, errs.Wrap(err, "table setting initialized err")
	}
	return ts, nil
}
