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

import "sort"

// GroupBySize simulates compacting a partition's data files into groups of
// roughly maxGroupBytes each. Sizes are packed in ascending order; the
// running group closes once its total already exceeds the cap, before the
// next size is admitted. A group's total may therefore overshoot the cap by
// up to one file: the model is "stop admitting once full", not "never
// exceed". Every input size appears in exactly one group.
func GroupBySize(sizes []int64, maxGroupBytes int64) [][]int64 {
	sorted := make([]int64, len(sizes))
	copy(sorted, sizes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	groups := make([][]int64, 0, len(sorted)/2+1)
	var current []int64
	var currentBytes int64

	for _, size := range sorted {
		if currentBytes > maxGroupBytes {
			groups = append(groups, current)
			current = nil
			currentBytes = 0
		}
		current = append(current, size)
		currentBytes += size
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	return groups
}
