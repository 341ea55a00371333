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
	"fmt"

	"github.com/Upsolver/iceberg-diag/internal/tablemetrics"
)

// RequestHandlingError reports a failed round trip to the analysis service
// for a batch of tables.
type RequestHandlingError struct {
	Tables []tablemetrics.Table
	Err    error
}

func (e *RequestHandlingError) Error() string {
	return fmt.Sprintf("requesting analysis for %s: %v", tableNames(e.Tables), e.Err)
}

func (e *RequestHandlingError) Unwrap() error { return e.Err }

// ResponseParsingError reports a malformed or incomplete analysis service
// reply. It retains the raw payload for debugging.
type ResponseParsingError struct {
	Tables  []tablemetrics.Table
	Payload []byte
	Err     error
}

func (e *ResponseParsingError) Error() string {
	return fmt.Sprintf("parsing analysis response for %s: %v", tableNames(e.Tables), e.Err)
}

func (e *ResponseParsingError) Unwrap() error { return e.Err }

func tableNames(tables []tablemetrics.Table) string {
	if len(tables) == 1 {
		return tables[0].FullName()
	}
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.FullName())
	}
	return fmt.Sprintf("%v", names)
}
