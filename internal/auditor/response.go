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

package auditor

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Upsolver/iceberg-diag/internal/tablemetrics"
)

// analysisResponse mirrors the analysis service's wire format. Field names
// and nesting are a fixed contract; every pointer below exists so a missing
// required field is detectable instead of silently decoding to zero.
type analysisResponse struct {
	AnalysisResults *[]analysisResult `json:"analysisResults"`
	Errors          *[]resultError    `json:"errors"`
}

type analysisResult struct {
	Table                     *partitionStats `json:"table"`
	LargestPartition          *partitionStats `json:"largestPartition"`
	WorstOverheadPartition    *partitionStats `json:"worstOverheadPartition"`
	WorstFilesCountPartition  *partitionStats `json:"worstFilesCountPartition"`
	WorstAvgFileSizePartition *partitionStats `json:"worstAvgFileSizePartition"`
}

// partitionStats carries the stat block shared by the table object and each
// named partition object. TotalPartitionsCount is only populated on the
// table object; Name is only meaningful there too (partition names are
// informational and unused in metric values).
type partitionStats struct {
	Name                      *string  `json:"name"`
	TotalSizeBytes            *float64 `json:"totalSizeBytes"`
	TargetSizeBytes           *float64 `json:"targetSizeBytes"`
	CurrentScanOverheadMillis *float64 `json:"currentScanOverheadMillis"`
	TargetScanOverheadMillis  *float64 `json:"targetScanOverheadMillis"`
	TotalFilesCount           *float64 `json:"totalFilesCount"`
	TargetFilesCount          *float64 `json:"targetFilesCount"`
	TotalPartitionsCount      *float64 `json:"totalPartitionsCount"`
}

type resultError struct {
	Table string `json:"table"`
	Error string `json:"error"`
}

// Response is a parsed analysis service reply: one metric set per analyzed
// table plus the per-table error entries the service reported.
type Response struct {
	Metrics []tablemetrics.TableMetrics

	errors []resultError
}

// TableFailure attributes a failure message to a table.
type TableFailure struct {
	Table   tablemetrics.Table
	Message string
}

// TableFailures converts the service's error entries into attributed
// failures. Entries without a table reference cannot be attributed and are
// dropped; a missing message falls back to "Unknown Error".
func (r *Response) TableFailures() []TableFailure {
	failures := make([]TableFailure, 0, len(r.errors))
	for _, e := range r.errors {
		if e.Table == "" {
			continue
		}
		message := e.Error
		if message == "" {
			message = "Unknown Error"
		}
		failures = append(failures, TableFailure{
			Table:   tablemetrics.TableFromFullName(e.Table),
			Message: message,
		})
	}
	return failures
}

// ParseResponse reconstructs the metric sets from the analysis service's
// JSON reply. A malformed document or any missing required field fails the
// whole parse with a ResponseParsingError carrying the raw payload and the
// table list under analysis; there is no best-effort partial result.
func ParseResponse(payload []byte, tables []tablemetrics.Table) (*Response, error) {
	fail := func(err error) (*Response, error) {
		return nil, &ResponseParsingError{Tables: tables, Payload: payload, Err: err}
	}

	var doc analysisResponse
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fail(err)
	}
	if doc.AnalysisResults == nil {
		return fail(fmt.Errorf("missing field analysisResults"))
	}
	if doc.Errors == nil {
		return fail(fmt.Errorf("missing field errors"))
	}

	metrics := make([]tablemetrics.TableMetrics, 0, len(*doc.AnalysisResults))
	for _, result := range *doc.AnalysisResults {
		tm, err := buildTableMetrics(result)
		if err != nil {
			return fail(err)
		}
		metrics = append(metrics, tm)
	}

	return &Response{Metrics: metrics, errors: *doc.Errors}, nil
}

// statPicker selects the before/after pointer pair for one metric mapping.
type statPicker func(p *partitionStats) (before, after *float64)

func scanOverheadFields(p *partitionStats) (*float64, *float64) {
	return p.CurrentScanOverheadMillis, p.TargetScanOverheadMillis
}

func fileCountFields(p *partitionStats) (*float64, *float64) {
	return p.TotalFilesCount, p.TargetFilesCount
}

func sizeFields(p *partitionStats) (*float64, *float64) {
	return p.TotalSizeBytes, p.TargetSizeBytes
}

func buildTableMetrics(result analysisResult) (tablemetrics.TableMetrics, error) {
	if result.Table == nil {
		return tablemetrics.TableMetrics{}, fmt.Errorf("missing field table")
	}
	if result.Table.Name == nil {
		return tablemetrics.TableMetrics{}, fmt.Errorf("missing field table.name")
	}
	table := tablemetrics.TableFromFullName(*result.Table.Name)

	mappings := []struct {
		name tablemetrics.MetricName
		obj  *partitionStats
		path string
		pick statPicker
	}{
		{tablemetrics.FullScanOverhead, result.Table, "table", scanOverheadFields},
		{tablemetrics.WorstScanOverhead, result.WorstOverheadPartition, "worstOverheadPartition", scanOverheadFields},
		{tablemetrics.FileCount, result.Table, "table", fileCountFields},
		{tablemetrics.WorstFileCount, result.WorstFilesCountPartition, "worstFilesCountPartition", fileCountFields},
		{tablemetrics.TotalTableSize, result.Table, "table", sizeFields},
		{tablemetrics.LargestPartitionSize, result.LargestPartition, "largestPartition", sizeFields},
	}

	metrics := make([]tablemetrics.Metric, 0, 9)
	for _, mapping := range mappings {
		if mapping.obj == nil {
			return tablemetrics.TableMetrics{}, fmt.Errorf("missing field %s", mapping.path)
		}
		before, after := mapping.pick(mapping.obj)
		if before == nil || after == nil {
			return tablemetrics.TableMetrics{}, fmt.Errorf("%s: missing required field for metric %q", mapping.path, mapping.name)
		}
		m, err := tablemetrics.NewMetricWithAfter(mapping.name, *before, *after)
		if err != nil {
			return tablemetrics.TableMetrics{}, err
		}
		metrics = append(metrics, m)
	}

	avgTable, err := averageMetric(tablemetrics.AvgFileSize, result.Table, "table")
	if err != nil {
		return tablemetrics.TableMetrics{}, err
	}
	if result.WorstAvgFileSizePartition == nil {
		return tablemetrics.TableMetrics{}, fmt.Errorf("missing field worstAvgFileSizePartition")
	}
	avgWorst, err := averageMetric(tablemetrics.WorstAvgFileSize, result.WorstAvgFileSizePartition, "worstAvgFileSizePartition")
	if err != nil {
		return tablemetrics.TableMetrics{}, err
	}
	metrics = append(metrics, avgTable, avgWorst)

	if result.Table.TotalPartitionsCount == nil {
		return tablemetrics.TableMetrics{}, fmt.Errorf("missing field table.totalPartitionsCount")
	}
	totalPartitions, err := tablemetrics.NewMetric(tablemetrics.TotalPartitions, *result.Table.TotalPartitionsCount)
	if err != nil {
		return tablemetrics.TableMetrics{}, err
	}
	metrics = append(metrics, totalPartitions)

	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].Name.Rank() < metrics[j].Name.Rank()
	})

	return tablemetrics.TableMetrics{Table: table, Metrics: metrics}, nil
}

// averageMetric derives before/after average file sizes from a stat block,
// treating a zero file count as average zero.
func averageMetric(name tablemetrics.MetricName, stats *partitionStats, path string) (tablemetrics.Metric, error) {
	if stats.TotalSizeBytes == nil || stats.TotalFilesCount == nil ||
		stats.TargetSizeBytes == nil || stats.TargetFilesCount == nil {
		return tablemetrics.Metric{}, fmt.Errorf("%s: missing required field for metric %q", path, name)
	}
	return tablemetrics.NewMetricWithAfter(name,
		safeDiv(*stats.TotalSizeBytes, *stats.TotalFilesCount),
		safeDiv(*stats.TargetSizeBytes, *stats.TargetFilesCount))
}

func safeDiv(size, count float64) float64 {
	if count == 0 {
		return 0
	}
	return size / count
}
