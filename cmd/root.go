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
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Upsolver/iceberg-diag/config"
	"github.com/Upsolver/iceberg-diag/internal/awsclient"
	"github.com/Upsolver/iceberg-diag/internal/catalog"
	"github.com/Upsolver/iceberg-diag/internal/display"
	"github.com/Upsolver/iceberg-diag/internal/logctx"
)

var (
	flagProfile   string
	flagRegion    string
	flagDatabase  string
	flagTableName string
	flagRemote    bool
	flagVerbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "iceberg-diag",
	Short: "Diagnose Apache Iceberg table layout",
	Long: `Scan AWS Glue Iceberg tables and report layout metrics, alongside a
simulated view of the same layout after compaction. Without --database it
lists the catalog's databases; without --table-name it lists the database's
Iceberg tables.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&flagProfile, "profile", "", "AWS profile name")
	rootCmd.Flags().StringVar(&flagRegion, "region", "", "AWS region, e.g. us-east-1")
	rootCmd.Flags().StringVar(&flagDatabase, "database", "", "Glue database name")
	rootCmd.Flags().StringVar(&flagTableName, "table-name", "", "table name, optionally a glob pattern, e.g. '*_logs'")
	rootCmd.Flags().BoolVar(&flagRemote, "remote", false, "analyze with the remote analysis service")
	rootCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	setupLogging(flagVerbose)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	ctx := logctx.WithLogger(cmd.Context(), slog.Default())

	var opts []awsclient.ManagerOption
	if profile := firstNonEmpty(flagProfile, cfg.AWS.Profile); profile != "" {
		opts = append(opts, awsclient.WithProfile(profile))
	}
	if region := firstNonEmpty(flagRegion, cfg.AWS.Region); region != "" {
		opts = append(opts, awsclient.WithRegion(region))
	}
	manager, err := awsclient.NewManager(ctx, opts...)
	if err != nil {
		return err
	}
	if err := manager.Validate(ctx); err != nil {
		return err
	}

	cat := catalog.New(manager.Glue())

	mode := display.ModeLocal
	if flagRemote {
		mode = display.ModeRemote
	}
	out := display.New(cmd.OutOrStdout(), mode)

	switch {
	case flagDatabase == "":
		databases, err := cat.ListDatabases(ctx)
		if err != nil {
			return err
		}
		return out.ShowList("Databases", databases)
	case flagTableName == "":
		tables, err := cat.ListIcebergTables(ctx, flagDatabase)
		if err != nil {
			return err
		}
		return out.ShowList(fmt.Sprintf("Iceberg tables in %s", flagDatabase), tables)
	default:
		return analyze(ctx, cfg, manager, cat, out)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
