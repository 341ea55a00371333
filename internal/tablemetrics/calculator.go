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

import "fmt"

// ContentKind tags a file as table data or as a delete file. Only data files
// participate in the compaction simulation.
type ContentKind int

const (
	ContentData ContentKind = iota
	ContentDelete
)

// FileDescriptor is one physical file in the table's current snapshot.
type FileDescriptor struct {
	Partition PartitionValue
	SizeBytes int64
	Content   ContentKind
}

// partitionAggregate accumulates per-partition totals during one
// ComputeMetrics call. dataSizes retains only data-file sizes for the
// compaction pass; counts and overheads cover every file kind.
type partitionAggregate struct {
	fileCount    int64
	totalSize    int64
	scanOverhead int64
	dataSizes    []int64
}

func (p *partitionAggregate) averageFileSize() float64 {
	if p.fileCount == 0 {
		return 0
	}
	return float64(p.totalSize) / float64(p.fileCount)
}

// ComputeMetrics turns one table's file descriptors and manifest count into
// the full before/after metric set, in display order. It holds no state
// across calls and never fails on an empty input; all metrics then resolve
// to zero (bar the manifest-seeded scan overhead).
func ComputeMetrics(files []FileDescriptor, manifestFileCount int) ([]Metric, error) {
	partitions := make(map[string]*partitionAggregate)
	// Partition keys in first-seen order. Worst-partition tie-breaking keeps
	// the first seen, so the simulation pass cannot iterate the map directly.
	var order []string

	var totalFiles, totalSize int64
	var dataFiles, dataSize int64

	// The manifest list itself has to be read before any data file is
	// touched, so it seeds the full scan overhead.
	fullOverhead := int64(manifestFileCount) * millisecondsPerScan

	for _, file := range files {
		key := file.Partition.Fingerprint()
		agg := partitions[key]
		if agg == nil {
			agg = &partitionAggregate{}
			partitions[key] = agg
			order = append(order, key)
		}

		overhead := ScanOverhead(file.SizeBytes)
		totalFiles++
		totalSize += file.SizeBytes
		fullOverhead += overhead

		agg.fileCount++
		agg.totalSize += file.SizeBytes
		agg.scanOverhead += overhead

		if file.Content == ContentData {
			dataFiles++
			dataSize += file.SizeBytes
			agg.dataSizes = append(agg.dataSizes, file.SizeBytes)
		}
	}

	var avgFileSize float64
	if dataFiles > 0 {
		avgFileSize = float64(dataSize) / float64(dataFiles)
	}

	// Worst average is the smallest per-partition average: the most
	// fragmented partition, not the biggest one.
	var worstAvgFileSize float64
	var largestPartition int64
	for i, key := range order {
		agg := partitions[key]
		if avg := agg.averageFileSize(); i == 0 || avg < worstAvgFileSize {
			worstAvgFileSize = avg
		}
		if agg.totalSize > largestPartition {
			largestPartition = agg.totalSize
		}
	}

	// Simulate compaction per partition, data files only. Delete files are
	// never regrouped. The "worst" partition for each headline metric is the
	// one with the largest absolute reduction; ties keep the first seen, and
	// with no positive reduction anywhere the worst metrics stay 0/0.
	var afterFiles, afterOverhead int64
	var worstFilesBefore, worstFilesAfter, bestFilesReduction int64
	var worstOverheadBefore, worstOverheadAfter, bestOverheadReduction int64

	for _, key := range order {
		agg := partitions[key]
		groups := GroupBySize(agg.dataSizes, defaultMaxGroupBytes)

		groupCount := int64(len(groups))
		var groupOverhead int64
		for _, group := range groups {
			var groupBytes int64
			for _, size := range group {
				groupBytes += size
			}
			groupOverhead += ScanOverhead(groupBytes)
		}

		afterFiles += groupCount
		afterOverhead += groupOverhead

		if reduction := agg.fileCount - groupCount; reduction > bestFilesReduction {
			bestFilesReduction = reduction
			worstFilesBefore = agg.fileCount
			worstFilesAfter = groupCount
		}
		if reduction := agg.scanOverhead - groupOverhead; reduction > bestOverheadReduction {
			bestOverheadReduction = reduction
			worstOverheadBefore = agg.scanOverhead
			worstOverheadAfter = groupOverhead
		}
	}

	specs := []struct {
		name     MetricName
		before   float64
		after    float64
		hasAfter bool
	}{
		{FullScanOverhead, float64(fullOverhead), float64(afterOverhead), true},
		{WorstScanOverhead, float64(worstOverheadBefore), float64(worstOverheadAfter), true},
		{FileCount, float64(totalFiles), float64(afterFiles), true},
		{WorstFileCount, float64(worstFilesBefore), float64(worstFilesAfter), true},
		{AvgFileSize, avgFileSize, 0, false},
		{WorstAvgFileSize, worstAvgFileSize, 0, false},
		{TotalTableSize, float64(totalSize), 0, false},
		{LargestPartitionSize, float64(largestPartition), 0, false},
		{TotalPartitions, float64(len(order)), 0, false},
	}

	metrics := make([]Metric, 0, len(specs))
	for _, s := range specs {
		var (
			m   Metric
			err error
		)
		if s.hasAfter {
			m, err = NewMetricWithAfter(s.name, s.before, s.after)
		} else {
			m, err = NewMetric(s.name, s.before)
		}
		if err != nil {
			return nil, fmt.Errorf("building metric %q: %w", s.name, err)
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}
