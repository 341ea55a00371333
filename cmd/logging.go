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
	"log/slog"
	"os"
)

// setupLogging configures the default slog logger on stderr so the metric
// tables on stdout stay clean. Debug level comes from --verbose or the
// DEBUG / ICEBERG_DIAG_DEBUG environment variables.
func setupLogging(verbose bool) {
	var opts *slog.HandlerOptions
	if verbose || os.Getenv("DEBUG") != "" || os.Getenv("ICEBERG_DIAG_DEBUG") != "" {
		opts = &slog.HandlerOptions{Level: slog.LevelDebug}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)).With(
		slog.String("service", "iceberg-diag"),
	))
}
