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

const (
	// fetchSizeBytes is the assumed request size when reading a file from
	// object storage. Reading a file costs one request per fetchSizeBytes
	// plus a fixed two-request floor (open + first range).
	fetchSizeBytes = 32 * 1024 * 1024

	// millisecondsPerScan converts read-request counts into abstract scan
	// overhead ticks. The calibration is external; the ticks are not literal
	// wall-clock milliseconds.
	millisecondsPerScan = 1

	// defaultMaxGroupBytes caps the byte size of a compaction group in the
	// simulated rewrite.
	defaultMaxGroupBytes = 750 * 1024 * 1024
)

// ReadCost returns the dimensionless cost of reading a file of the given
// size: one unit per fetch-sized request plus a fixed per-file floor of 2.
func ReadCost(sizeBytes int64) int64 {
	return sizeBytes/fetchSizeBytes + 2
}

// ScanOverhead converts a file size into scan overhead ticks.
func ScanOverhead(sizeBytes int64) int64 {
	return ReadCost(sizeBytes) * millisecondsPerScan
}
