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

// Package display renders table metrics and catalog listings for the
// terminal.
package display

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Upsolver/iceberg-diag/internal/tablemetrics"
)

// Mode selects which metrics a rendering shows. Local analysis cannot fill in
// every metric the remote service can, so some rows only appear in remote
// mode.
type Mode int

const (
	ModeLocal Mode = iota
	ModeRemote
)

// Displayer writes aligned metric tables and listings to a single writer.
type Displayer struct {
	w    io.Writer
	mode Mode
}

func New(w io.Writer, mode Mode) *Displayer {
	return &Displayer{w: w, mode: mode}
}

// ShowTableMetrics renders one metrics block for a table: a header naming the
// table and one row per visible metric with its before value, simulated after
// value and improvement percentage.
func (d *Displayer) ShowTableMetrics(tm tablemetrics.TableMetrics) error {
	if _, err := fmt.Fprintf(d.w, "\nTable Metrics: %s\n", tm.Table.FullName()); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(d.w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Metric\tBefore\tAfter\tImprovement")
	for _, metric := range tm.Metrics {
		pol, ok := tablemetrics.PolicyFor(metric.Name)
		if !ok {
			continue
		}
		if d.mode == ModeLocal && !pol.VisibleInLocalMode {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			metric.Name, metric.BeforeString(), metric.AfterString(), metric.ImprovementString())
	}
	return tw.Flush()
}

// ShowAllTableMetrics renders a metrics block per table, in order.
func (d *Displayer) ShowAllTableMetrics(list []tablemetrics.TableMetrics) error {
	for _, tm := range list {
		if err := d.ShowTableMetrics(tm); err != nil {
			return err
		}
	}
	return nil
}

// ShowList renders a titled listing, one item per line.
func (d *Displayer) ShowList(title string, items []string) error {
	if _, err := fmt.Fprintf(d.w, "%s:\n", title); err != nil {
		return err
	}
	for _, item := range items {
		if _, err := fmt.Fprintf(d.w, "  %s\n", item); err != nil {
			return err
		}
	}
	return nil
}

// Failure is one table that could not be analyzed.
type Failure struct {
	Table   string
	Message string
}

// ShowFailures renders the tables that could not be analyzed and why.
func (d *Displayer) ShowFailures(failures []Failure) error {
	if len(failures) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(d.w, "\nFailed to analyze %d table(s):\n", len(failures)); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(d.w, 2, 4, 2, ' ', 0)
	for _, f := range failures {
		fmt.Fprintf(tw, "  %s\t%s\n", f.Table, f.Message)
	}
	return tw.Flush()
}
