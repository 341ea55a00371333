// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package tablemetrics

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mib = int64(1024 * 1024)

func TestGroupBySize(t *testing.T) {
	tests := []struct {
		name          string
		sizes         []int64
		maxGroupBytes int64
		expected      [][]int64
	}{
		{
			name:          "empty input",
			sizes:         nil,
			maxGroupBytes: 100,
			expected:      [][]int64{},
		},
		{
			name:          "single file",
			sizes:         []int64{10},
			maxGroupBytes: 5,
			expected:      [][]int64{{10}},
		},
		{
			name:          "group closes only after the total exceeds the cap",
			sizes:         []int64{10 * mib, 20 * mib, 30 * mib},
			maxGroupBytes: 25 * mib,
			expected:      [][]int64{{10 * mib, 20 * mib}, {30 * mib}},
		},
		{
			name:          "input is sorted ascending before packing",
			sizes:         []int64{30, 10, 20},
			maxGroupBytes: 25,
			expected:      [][]int64{{10, 20}, {30}},
		},
		{
			name:          "everything fits in one group",
			sizes:         []int64{1, 2, 3},
			maxGroupBytes: 100,
			expected:      [][]int64{{1, 2, 3}},
		},
		{
			name:          "one oversize file per group",
			sizes:         []int64{50, 60, 70},
			maxGroupBytes: 10,
			expected:      [][]int64{{50}, {60}, {70}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GroupBySize(tt.sizes, tt.maxGroupBytes))
		})
	}
}

func TestGroupBySizePreservesMultiset(t *testing.T) {
	sizes := []int64{5, 5, 1, 9, 3, 3, 7, 2, 8, 100, 0, 5}
	groups := GroupBySize(sizes, 10)

	var flattened []int64
	for _, group := range groups {
		require.NotEmpty(t, group)
		flattened = append(flattened, group...)
	}

	expected := append([]int64(nil), sizes...)
	sort.Slice(expected, func(i, j int) bool { return expected[i] < expected[j] })
	assert.Equal(t, expected, flattened)
}

func TestGroupBySizeDoesNotMutateInput(t *testing.T) {
	sizes := []int64{3, 1, 2}
	GroupBySize(sizes, 10)
	assert.Equal(t, []int64{3, 1, 2}, sizes)
}
