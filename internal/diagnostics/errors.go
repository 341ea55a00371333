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

package diagnostics

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/Upsolver/iceberg-diag/internal/tablemetrics"
)

// CalculationError reports that metric computation failed for one table.
type CalculationError struct {
	Table tablemetrics.Table
	Err   error
}

func (e *CalculationError) Error() string {
	return fmt.Sprintf("error calculating metrics for table %s: %v", e.Table.FullName(), e.Err)
}

func (e *CalculationError) Unwrap() error { return e.Err }

// TableFailure pairs a table with the error that kept it out of the results.
type TableFailure struct {
	Table tablemetrics.Table
	Err   error
}

// CombineFailures folds the per-table failures into a single error, or nil
// when there are none.
func CombineFailures(failures []TableFailure) error {
	var combined *multierror.Error
	for _, f := range failures {
		combined = multierror.Append(combined, f.Err)
	}
	return combined.ErrorOrNil()
}
