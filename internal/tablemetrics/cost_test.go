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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadCost(t *testing.T) {
	tests := []struct {
		name      string
		sizeBytes int64
		expected  int64
	}{
		{"zero bytes still pays the request floor", 0, 2},
		{"one byte", 1, 2},
		{"just under one fetch", fetchSizeBytes - 1, 2},
		{"exactly one fetch", fetchSizeBytes, 3},
		{"ten fetches", 10 * fetchSizeBytes, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ReadCost(tt.sizeBytes))
		})
	}
}

func TestReadCostMonotonic(t *testing.T) {
	sizes := []int64{0, 1, 1024, fetchSizeBytes - 1, fetchSizeBytes, fetchSizeBytes + 1, 100 * fetchSizeBytes}
	prev := int64(0)
	for _, size := range sizes {
		cost := ReadCost(size)
		assert.GreaterOrEqual(t, cost, int64(2), "size %d", size)
		assert.GreaterOrEqual(t, cost, prev, "size %d", size)
		prev = cost
	}
}

func TestScanOverhead(t *testing.T) {
	assert.Equal(t, ReadCost(12345)*millisecondsPerScan, ScanOverhead(12345))
}
