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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Upsolver/iceberg-diag/config"
	"github.com/Upsolver/iceberg-diag/internal/auditor"
	"github.com/Upsolver/iceberg-diag/internal/awsclient"
	"github.com/Upsolver/iceberg-diag/internal/catalog"
	"github.com/Upsolver/iceberg-diag/internal/diagnostics"
	"github.com/Upsolver/iceberg-diag/internal/display"
	"github.com/Upsolver/iceberg-diag/internal/iceberg"
	"github.com/Upsolver/iceberg-diag/internal/tablemetrics"
)

func analyze(ctx context.Context, cfg *config.Config, manager *awsclient.Manager, cat *catalog.Catalog, out *display.Displayer) error {
	names, err := cat.MatchingTables(ctx, flagDatabase, flagTableName)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no iceberg tables in %s match %q", flagDatabase, flagTableName)
	}

	tables := make([]tablemetrics.Table, 0, len(names))
	for _, name := range names {
		tables = append(tables, tablemetrics.Table{Database: flagDatabase, Name: name})
	}
	slog.Info("analyzing tables", "count", len(tables), "remote", flagRemote)

	if flagRemote {
		return analyzeRemote(ctx, cfg, manager, tables, out)
	}
	return analyzeLocal(ctx, cfg, manager, cat, tables, out)
}

func analyzeLocal(ctx context.Context, cfg *config.Config, manager *awsclient.Manager, cat *catalog.Catalog, tables []tablemetrics.Table, out *display.Displayer) error {
	loader := iceberg.NewLoader(manager.S3(), cfg.Scan.ManifestWorkers)
	analyzer := diagnostics.NewAnalyzer(cat, loader, cfg.Scan.TableWorkers)

	succeeded, failed := analyzer.AnalyzeTables(ctx, tables)
	if err := out.ShowAllTableMetrics(succeeded); err != nil {
		return err
	}

	failures := make([]display.Failure, 0, len(failed))
	for _, f := range failed {
		failures = append(failures, display.Failure{Table: f.Table.FullName(), Message: f.Err.Error()})
	}
	if err := out.ShowFailures(failures); err != nil {
		return err
	}
	if len(succeeded) == 0 && len(failed) > 0 {
		return diagnostics.CombineFailures(failed)
	}
	return nil
}

func analyzeRemote(ctx context.Context, cfg *config.Config, manager *awsclient.Manager, tables []tablemetrics.Table, out *display.Displayer) error {
	creds, err := manager.SessionCredentials(ctx)
	if err != nil {
		return err
	}

	requester := auditor.NewRequester(cfg.Analyzer.Endpoint, cfg.Analyzer.Timeout)
	response, err := requester.RequestMetrics(ctx, creds, tables)
	if err != nil {
		return err
	}

	if err := out.ShowAllTableMetrics(response.Metrics); err != nil {
		return err
	}

	tableFailures := response.TableFailures()
	failures := make([]display.Failure, 0, len(tableFailures))
	for _, f := range tableFailures {
		failures = append(failures, display.Failure{Table: f.Table.FullName(), Message: f.Message})
	}
	if err := out.ShowFailures(failures); err != nil {
		return err
	}
	if len(response.Metrics) == 0 && len(tableFailures) > 0 {
		return errors.New("remote analysis failed for every table")
	}
	return nil
}
