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
	"fmt"
	"sort"
	"strings"
)

// PartitionValue is the opaque structured partition value attached to a data
// file, typically decoded from a manifest entry's partition record.
type PartitionValue struct {
	TypeName string
	Fields   map[string]any
}

// Fingerprint derives a stable grouping key from the partition value. Field
// names are sorted so two structurally equal values always map to the same
// key regardless of field order; names with a leading underscore are
// implementation bookkeeping and are excluded. The result looks like
// "Record[a=1, b='x']". It is a deterministic key, not a hash.
func (p PartitionValue) Fingerprint() string {
	names := make([]string, 0, len(p.Fields))
	for name := range p.Fields {
		if strings.HasPrefix(name, "_") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+reprValue(p.Fields[name]))
	}
	return p.TypeName + "[" + strings.Join(parts, ", ") + "]"
}

func reprValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return "'" + t + "'"
	default:
		return fmt.Sprint(v)
	}
}
