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

import "strings"

// Table identifies one table inside a catalog database.
type Table struct {
	Database string
	Name     string
}

// TableFromFullName splits a dot-separated "database.table" identifier. A
// bare name with no dot becomes a table with an empty database.
func TableFromFullName(fullName string) Table {
	parts := strings.SplitN(strings.TrimSpace(fullName), ".", 2)
	if len(parts) == 2 {
		return Table{Database: parts[0], Name: parts[1]}
	}
	return Table{Name: parts[0]}
}

// FullName renders the dot-separated identifier.
func (t Table) FullName() string {
	if t.Database == "" {
		return t.Name
	}
	return t.Database + "." + t.Name
}

func (t Table) String() string { return t.FullName() }

// TableMetrics is the full metric set computed for one table, in display
// order.
type TableMetrics struct {
	Table   Table
	Metrics []Metric
}
