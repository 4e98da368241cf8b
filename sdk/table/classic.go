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
package table

// Classic 回傳經典十階稀有度表。
func Classic() []Tier {
	return []Tier{
		{Name: "Common", Color: "gray", Odds: 2},
		{Name: "Uncommon", Color: "green", Odds: 4},
		{Name: "Rare", Color: "blue", Odds: 16},
		{Name: "Epic", Color: "purple", Odds: 64},
		{Name: "Ultra Rare", Color: "red", Odds: 512},
		{Name: "Legendary", Color: "orange", Odds: 1024},
		{Name: "Mythic", Color: "yellow", Odds: 10000},
		{Name: "Luminous", Color: "#fffacd", Odds: 125000},
		{Name: "Abyssal", Color: "#00bfff", Odds: 200000},
		{Name: "Apollo", Color: "#ff4500", Odds: 250000},
	}
}
