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
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MetricName identifies one of the fixed table layout metrics. Declaration
// order is the display and sort order, so new names must be appended.
type MetricName int

const (
	FullScanOverhead MetricName = iota
	WorstScanOverhead
	FileCount
	WorstFileCount
	AvgFileSize
	WorstAvgFileSize
	TotalTableSize
	LargestPartitionSize
	TotalPartitions

	numMetricNames
)

var metricLabels = [numMetricNames]string{
	FullScanOverhead:     "Full Scan Overhead",
	WorstScanOverhead:    "Worst Partition Scan Overhead",
	FileCount:            "Number of Files",
	WorstFileCount:       "Worst Partition Number of Files",
	AvgFileSize:          "Avg File Size",
	WorstAvgFileSize:     "Worst Partition Avg File Size",
	TotalTableSize:       "Total Table Size",
	LargestPartitionSize: "Largest Partition Size",
	TotalPartitions:      "Total Partitions",
}

func (n MetricName) String() string {
	if n < 0 || n >= numMetricNames {
		return fmt.Sprintf("MetricName(%d)", int(n))
	}
	return metricLabels[n]
}

// Rank is the declaration-order position of the name, used to sort metric
// lists back into display order.
func (n MetricName) Rank() int { return int(n) }

// MetricNames returns every metric name in declaration order.
func MetricNames() []MetricName {
	names := make([]MetricName, numMetricNames)
	for i := range names {
		names[i] = MetricName(i)
	}
	return names
}

// ValueKind selects how a metric value is rendered.
type ValueKind int

const (
	ValueInt ValueKind = iota
	ValueDuration
	ValueSize
)

// DisplayPolicy is the static per-name rendering policy. It never changes at
// runtime.
type DisplayPolicy struct {
	Kind ValueKind

	// VisibleInLocalMode hides metrics that only carry useful detail when
	// the remote analysis service fills them in.
	VisibleInLocalMode bool

	// ShowImprovement suppresses the improvement column for metrics where a
	// before/after ratio is meaningless.
	ShowImprovement bool
}

var displayPolicies = [numMetricNames]DisplayPolicy{
	FullScanOverhead:     {Kind: ValueDuration, VisibleInLocalMode: true, ShowImprovement: true},
	WorstScanOverhead:    {Kind: ValueDuration, VisibleInLocalMode: true, ShowImprovement: true},
	FileCount:            {Kind: ValueInt, VisibleInLocalMode: true, ShowImprovement: true},
	WorstFileCount:       {Kind: ValueInt, VisibleInLocalMode: true, ShowImprovement: true},
	AvgFileSize:          {Kind: ValueSize, VisibleInLocalMode: true, ShowImprovement: true},
	WorstAvgFileSize:     {Kind: ValueSize, VisibleInLocalMode: true, ShowImprovement: true},
	TotalTableSize:       {Kind: ValueSize, VisibleInLocalMode: true, ShowImprovement: true},
	LargestPartitionSize: {Kind: ValueSize, VisibleInLocalMode: true, ShowImprovement: true},
	TotalPartitions:      {Kind: ValueInt, VisibleInLocalMode: false, ShowImprovement: false},
}

// PolicyFor returns the display policy for a metric name.
func PolicyFor(name MetricName) (DisplayPolicy, bool) {
	if name < 0 || name >= numMetricNames {
		return DisplayPolicy{}, false
	}
	return displayPolicies[name], true
}

// ErrInvalidMetric reports a metric name outside the fixed enumeration. This
// is a programming defect, not an expected runtime condition.
var ErrInvalidMetric = errors.New("invalid metric name")

// Metric is one named before/after measurement. Metrics are immutable once
// built; construct them with NewMetric or NewMetricWithAfter.
type Metric struct {
	Name     MetricName
	Before   float64
	After    float64
	HasAfter bool
}

// NewMetric builds a before-only metric.
func NewMetric(name MetricName, before float64) (Metric, error) {
	if name < 0 || name >= numMetricNames {
		return Metric{}, fmt.Errorf("%w: %d", ErrInvalidMetric, int(name))
	}
	return Metric{Name: name, Before: before}, nil
}

// NewMetricWithAfter builds a metric carrying a simulated post-compaction
// value.
func NewMetricWithAfter(name MetricName, before, after float64) (Metric, error) {
	m, err := NewMetric(name, before)
	if err != nil {
		return Metric{}, err
	}
	m.After = after
	m.HasAfter = true
	return m, nil
}

// ImprovementPct returns the percentage reduction from before to after. The
// second return is false when the metric has no after value. A zero before
// with a nonzero after yields +Inf; 0 to 0 counts as no change.
func (m Metric) ImprovementPct() (float64, bool) {
	if !m.HasAfter {
		return 0, false
	}
	switch {
	case m.Before == 0 && m.After == 0:
		return 0, true
	case m.Before != 0:
		return (1 - m.After/m.Before) * 100, true
	default:
		return math.Inf(1), true
	}
}

// policy is the bounds-checked policy lookup for rendering. The factories
// reject out-of-range names, but Metric is a plain struct anyone can build,
// so renderers fall back to the INT kind instead of indexing blind.
func (m Metric) policy() DisplayPolicy {
	pol, ok := PolicyFor(m.Name)
	if !ok {
		return DisplayPolicy{Kind: ValueInt}
	}
	return pol
}

// BeforeString renders the before value per the metric's value kind.
func (m Metric) BeforeString() string {
	return formatValue(m.policy().Kind, m.Before)
}

// AfterString renders the after value, or "" when absent.
func (m Metric) AfterString() string {
	if !m.HasAfter {
		return ""
	}
	return formatValue(m.policy().Kind, m.After)
}

// ImprovementString renders the improvement percentage. It is empty when the
// metric has no after value or its policy suppresses improvement. Durations
// where both sides are under 10 ticks report a flat "0.00%" so that
// rounding noise on near-zero magnitudes never shows up as a huge ratio.
func (m Metric) ImprovementString() string {
	pol := m.policy()
	if !pol.ShowImprovement {
		return ""
	}
	pct, ok := m.ImprovementPct()
	if !ok {
		return ""
	}
	if pol.Kind == ValueDuration && m.Before < 10 && m.After < 10 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", pct)
}

func formatValue(kind ValueKind, v float64) string {
	switch kind {
	case ValueDuration:
		return formatDuration(v)
	case ValueSize:
		return formatSize(v)
	default:
		return strconv.FormatInt(int64(v), 10)
	}
}

// formatDuration renders overhead ticks, read as milliseconds, in the most
// compact of "Nh Nm Ns", "Nm Ns" or fractional seconds.
func formatDuration(milliseconds float64) string {
	totalSeconds := milliseconds / 1000
	hours := int64(totalSeconds) / 3600
	minutes := (int64(totalSeconds) % 3600) / 60
	seconds := math.Mod(totalSeconds, 60)

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, int64(seconds))
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, int64(seconds))
	case seconds > 0 && seconds < 0.01:
		return "<0.01s"
	default:
		s := strconv.FormatFloat(seconds, 'f', 2, 64)
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
		return s + "s"
	}
}

// formatSize renders a byte count with 1024-based units, two decimals.
func formatSize(size float64) string {
	units := []string{"B", "KB", "MB", "GB", "TB", "PB"}
	idx := 0
	for size >= 1024 && idx < len(units)-1 {
		size /= 1024
		idx++
	}
	return fmt.Sprintf("%.2f %s", size, units[idx])
}
