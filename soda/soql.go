// Copyright 2022 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package soda

import "strings"

// MatchNothing is a $where expression which is false for every row.
const MatchNothing = "1=-1"

// Quote makes a SoQL string literal out of s, doubling any single quotes.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Equal is the SoQL condition that the column equals value exactly.
func Equal(column, value string) string {
	return column + " = " + Quote(value)
}

// AnyEqual is the SoQL condition that the column equals one of the values.
// The conditions are joined with OR without parentheses, so the result must not
// be combined with AND. With no values it matches nothing.
func AnyEqual(column string, values ...string) string {
	if len(values) == 0 {
		return MatchNothing
	}
	conds := make([]string, len(values))
	for i, v := range values {
		conds[i] = Equal(column, v)
	}
	return strings.Join(conds, " OR ")
}
