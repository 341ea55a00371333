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

package catalog

import (
	"fmt"

	"github.com/Upsolver/iceberg-diag/internal/tablemetrics"
)

// DatabaseNotFoundError means the database does not exist in the catalog.
type DatabaseNotFoundError struct {
	Database string
}

func (e *DatabaseNotFoundError) Error() string {
	return fmt.Sprintf("database does not exist: %s", e.Database)
}

// TableNotFoundError means the table does not exist in the catalog.
type TableNotFoundError struct {
	Table tablemetrics.Table
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("table does not exist: %s", e.Table)
}

// NotIcebergTableError means the Glue entry exists but is not an Iceberg
// table.
type NotIcebergTableError struct {
	Table     tablemetrics.Table
	TableType string
}

func (e *NotIcebergTableError) Error() string {
	return fmt.Sprintf("table %s has table_type %q, expected iceberg", e.Table, e.TableType)
}

// MissingPropertyError means the Glue entry lacks a property needed to load
// the table.
type MissingPropertyError struct {
	Table    tablemetrics.Table
	Property string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("table %s is missing the %q property", e.Table, e.Property)
}

// InvalidPatternError means the table glob pattern cannot be parsed.
type InvalidPatternError struct {
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid table pattern %q: %v", e.Pattern, e.Err)
}

func (e *InvalidPatternError) Unwrap() error { return e.Err }
