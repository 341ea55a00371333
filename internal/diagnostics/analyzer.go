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

// Package diagnostics runs table layout analysis across one or more Iceberg
// tables, resolving each table through the catalog, scanning its metadata
// tree and computing the layout metrics.
package diagnostics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Upsolver/iceberg-diag/internal/logctx"
	"github.com/Upsolver/iceberg-diag/internal/tablemetrics"
)

const defaultTableWorkers = 10

// MetadataResolver resolves a table to its metadata file location.
type MetadataResolver interface {
	MetadataLocation(ctx context.Context, table tablemetrics.Table) (string, error)
}

// TableScanner walks a metadata tree and returns the live file descriptors
// plus the manifest count.
type TableScanner interface {
	TableScan(ctx context.Context, metadataLocation string) ([]tablemetrics.FileDescriptor, int, error)
}

// Analyzer computes layout metrics for Iceberg tables.
type Analyzer struct {
	resolver MetadataResolver
	scanner  TableScanner
	workers  int
}

// NewAnalyzer builds an analyzer running up to workers concurrent table
// analyses (<= 0 selects the default).
func NewAnalyzer(resolver MetadataResolver, scanner TableScanner, workers int) *Analyzer {
	if workers <= 0 {
		workers = defaultTableWorkers
	}
	return &Analyzer{resolver: resolver, scanner: scanner, workers: workers}
}

// AnalyzeTable computes the layout metrics for a single table. Failures are
// returned as a CalculationError naming the table.
func (a *Analyzer) AnalyzeTable(ctx context.Context, table tablemetrics.Table) (tablemetrics.TableMetrics, error) {
	ctx = logctx.With(ctx, "table", table.FullName())
	logger := logctx.FromContext(ctx)

	location, err := a.resolver.MetadataLocation(ctx, table)
	if err != nil {
		return tablemetrics.TableMetrics{}, &CalculationError{Table: table, Err: err}
	}

	files, manifestCount, err := a.scanner.TableScan(ctx, location)
	if err != nil {
		return tablemetrics.TableMetrics{}, &CalculationError{Table: table, Err: err}
	}
	logger.Debug("table scanned", "files", len(files), "manifests", manifestCount)

	metrics, err := tablemetrics.ComputeMetrics(files, manifestCount)
	if err != nil {
		return tablemetrics.TableMetrics{}, &CalculationError{Table: table, Err: err}
	}
	return tablemetrics.TableMetrics{Table: table, Metrics: metrics}, nil
}

// AnalyzeTables analyzes every table with a bounded worker pool. One table's
// failure never aborts the batch: successes come back in the input order and
// failures are reported separately, in the input order too.
func (a *Analyzer) AnalyzeTables(ctx context.Context, tables []tablemetrics.Table) ([]tablemetrics.TableMetrics, []TableFailure) {
	type outcome struct {
		metrics tablemetrics.TableMetrics
		err     error
	}
	results := make([]outcome, len(tables))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, table := range tables {
		i, table := i, table
		g.Go(func() error {
			metrics, err := a.AnalyzeTable(gctx, table)
			results[i] = outcome{metrics: metrics, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var succeeded []tablemetrics.TableMetrics
	var failed []TableFailure
	for i, r := range results {
		if r.err != nil {
			failed = append(failed, TableFailure{Table: tables[i], Err: r.err})
			continue
		}
		succeeded = append(succeeded, r.metrics)
	}
	return succeeded, failed
}
