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

package iceberg

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/linkedin/goavro/v2"

	"github.com/Upsolver/iceberg-diag/internal/tablemetrics"
)

// Manifest entry statuses per the Iceberg spec. Deleted entries describe
// files removed by the snapshot and are not part of the live layout.
const (
	entryStatusExisting = 0
	entryStatusAdded    = 1
	entryStatusDeleted  = 2
)

// Data file content kinds per the Iceberg spec: 0 data, 1 position deletes,
// 2 equality deletes.
const contentKindData = 0

// partitionTypeName tags partition fingerprints. Manifest schemas name the
// partition record ("r102" by convention), which is spec-version noise, so
// every partition gets the same stable tag instead.
const partitionTypeName = "Record"

// decodeManifestList extracts the manifest file paths from a manifest list
// Avro object container file.
func decodeManifestList(data []byte) ([]string, error) {
	var paths []string
	err := scanOCF(data, func(record map[string]any) error {
		path, ok := record["manifest_path"].(string)
		if !ok {
			return fmt.Errorf("manifest list entry has no manifest_path")
		}
		paths = append(paths, path)
		return nil
	})
	return paths, err
}

// decodeManifest extracts the live file entries from a manifest Avro object
// container file.
func decodeManifest(data []byte) ([]tablemetrics.FileDescriptor, error) {
	var files []tablemetrics.FileDescriptor
	err := scanOCF(data, func(record map[string]any) error {
		status, ok := toInt64(record["status"])
		if !ok {
			return fmt.Errorf("manifest entry has no status")
		}
		if status == entryStatusDeleted {
			return nil
		}

		dataFile, ok := record["data_file"].(map[string]any)
		if !ok {
			return fmt.Errorf("manifest entry has no data_file")
		}
		size, ok := toInt64(dataFile["file_size_in_bytes"])
		if !ok {
			return fmt.Errorf("data_file has no file_size_in_bytes")
		}

		// v1 manifests predate delete files and carry no content field.
		content := int64(contentKindData)
		if raw, present := dataFile["content"]; present {
			if content, ok = toInt64(unwrapUnion(raw)); !ok {
				return fmt.Errorf("data_file has malformed content kind")
			}
		}
		kind := tablemetrics.ContentData
		if content != contentKindData {
			kind = tablemetrics.ContentDelete
		}

		files = append(files, tablemetrics.FileDescriptor{
			Partition: partitionValue(dataFile["partition"]),
			SizeBytes: size,
			Content:   kind,
		})
		return nil
	})
	return files, err
}

func scanOCF(data []byte, visit func(record map[string]any) error) error {
	ocf, err := goavro.NewOCFReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("opening avro container: %w", err)
	}
	for ocf.Scan() {
		datum, err := ocf.Read()
		if err != nil {
			return fmt.Errorf("reading avro record: %w", err)
		}
		record, ok := datum.(map[string]any)
		if !ok {
			return fmt.Errorf("unexpected avro datum type %T", datum)
		}
		if err := visit(record); err != nil {
			return err
		}
	}
	// Scan returns false on both EOF and a truncated or corrupt block; only
	// Err tells them apart. Without this check a damaged container decodes
	// to a partial record set with no error.
	if err := ocf.Err(); err != nil {
		return fmt.Errorf("scanning avro container: %w", err)
	}
	return nil
}

func partitionValue(raw any) tablemetrics.PartitionValue {
	fields := map[string]any{}
	if record, ok := raw.(map[string]any); ok {
		for name, value := range record {
			fields[name] = unwrapUnion(value)
		}
	}
	return tablemetrics.PartitionValue{TypeName: partitionTypeName, Fields: fields}
}

// unwrapUnion strips goavro's union envelope, which decodes a union value as
// a single-entry map keyed by the branch's type name (eg. {"int": 5} or
// {"long.timestamp-micros": ...}).
func unwrapUnion(v any) any {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return v
	}
	for key, inner := range m {
		if avroBranchNames[key] || strings.Contains(key, ".") {
			return inner
		}
	}
	return v
}

var avroBranchNames = map[string]bool{
	"boolean": true,
	"int":     true,
	"long":    true,
	"float":   true,
	"double":  true,
	"bytes":   true,
	"string":  true,
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	default:
		return 0, false
	}
}
