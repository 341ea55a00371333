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
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	fetched []string
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := *params.Bucket + "/" + *params.Key
	f.fetched = append(f.fetched, path)
	data, ok := f.objects[path]
	if !ok {
		return nil, fmt.Errorf("NoSuchKey: %s", path)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func manifestListBytes(t *testing.T, paths ...string) []byte {
	t.Helper()
	records := make([]map[string]any, 0, len(paths))
	for _, p := range paths {
		records = append(records, map[string]any{"manifest_path": p, "manifest_length": int64(1)})
	}
	return encodeOCF(t, manifestListSchema, records)
}

func manifestBytes(t *testing.T, sizes ...int64) []byte {
	t.Helper()
	records := make([]map[string]any, 0, len(sizes))
	for _, size := range sizes {
		records = append(records, entryV1(entryStatusAdded, goavro.Union("int", 1), size))
	}
	return encodeOCF(t, manifestSchemaV1, records)
}

func TestTableScan(t *testing.T) {
	metadata := []byte(`{
		"current-snapshot-id": 42,
		"snapshots": [
			{"snapshot-id": 41, "manifest-list": "s3://bucket/meta/old-list.avro"},
			{"snapshot-id": 42, "manifest-list": "s3://bucket/meta/list.avro"}
		]
	}`)
	api := &fakeS3{objects: map[string][]byte{
		"bucket/meta/v3.metadata.json": metadata,
		"bucket/meta/list.avro":        manifestListBytes(t, "s3://bucket/meta/m1.avro", "s3://bucket/meta/m2.avro"),
		"bucket/meta/m1.avro":          manifestBytes(t, 100, 200),
		"bucket/meta/m2.avro":          manifestBytes(t, 300),
	}}

	files, manifestCount, err := NewLoader(api, 2).TableScan(context.Background(), "s3://bucket/meta/v3.metadata.json")
	require.NoError(t, err)

	assert.Equal(t, 2, manifestCount)
	require.Len(t, files, 3)

	// Descriptors follow manifest-list order regardless of fetch order.
	assert.Equal(t, int64(100), files[0].SizeBytes)
	assert.Equal(t, int64(200), files[1].SizeBytes)
	assert.Equal(t, int64(300), files[2].SizeBytes)

	assert.NotContains(t, api.fetched, "bucket/meta/old-list.avro")
}

func TestTableScanGzipMetadata(t *testing.T) {
	metadata := []byte(`{
		"current-snapshot-id": 7,
		"snapshots": [{"snapshot-id": 7, "manifest-list": "s3://bucket/meta/list.avro"}]
	}`)
	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	_, err := zw.Write(metadata)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	api := &fakeS3{objects: map[string][]byte{
		"bucket/meta/v1.gz.metadata.json": compressed.Bytes(),
		"bucket/meta/list.avro":           manifestListBytes(t, "s3://bucket/meta/m1.avro"),
		"bucket/meta/m1.avro":             manifestBytes(t, 2048),
	}}

	files, manifestCount, err := NewLoader(api, 0).TableScan(context.Background(), "s3://bucket/meta/v1.gz.metadata.json")
	require.NoError(t, err)
	assert.Equal(t, 1, manifestCount)
	require.Len(t, files, 1)
	assert.Equal(t, int64(2048), files[0].SizeBytes)
}

func TestTableScanNoCurrentSnapshot(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
	}{
		{"missing id", `{"snapshots": []}`},
		{"negative id", `{"current-snapshot-id": -1, "snapshots": []}`},
		{"dangling id", `{"current-snapshot-id": 9, "snapshots": [{"snapshot-id": 8, "manifest-list": "s3://b/l.avro"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeS3{objects: map[string][]byte{
				"bucket/meta/v1.metadata.json": []byte(tt.metadata),
			}}

			files, manifestCount, err := NewLoader(api, 1).TableScan(context.Background(), "s3://bucket/meta/v1.metadata.json")
			require.NoError(t, err)
			assert.Empty(t, files)
			assert.Zero(t, manifestCount)
		})
	}
}

func TestTableScanMissingMetadata(t *testing.T) {
	api := &fakeS3{objects: map[string][]byte{}}

	_, _, err := NewLoader(api, 1).TableScan(context.Background(), "s3://bucket/meta/v1.metadata.json")
	assert.ErrorContains(t, err, "fetching table metadata")
}

func TestTableScanMissingManifest(t *testing.T) {
	metadata := []byte(`{
		"current-snapshot-id": 1,
		"snapshots": [{"snapshot-id": 1, "manifest-list": "s3://bucket/meta/list.avro"}]
	}`)
	api := &fakeS3{objects: map[string][]byte{
		"bucket/meta/v1.metadata.json": metadata,
		"bucket/meta/list.avro":        manifestListBytes(t, "s3://bucket/meta/gone.avro"),
	}}

	_, _, err := NewLoader(api, 1).TableScan(context.Background(), "s3://bucket/meta/v1.metadata.json")
	assert.ErrorContains(t, err, "fetching manifest s3://bucket/meta/gone.avro")
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		location string
		bucket   string
		key      string
		wantErr  bool
	}{
		{"s3://bucket/path/to/file", "bucket", "path/to/file", false},
		{"s3a://bucket/key", "bucket", "key", false},
		{"s3n://bucket/key", "bucket", "key", false},
		{"gs://bucket/key", "", "", true},
		{"s3://bucket", "", "", true},
		{"s3://bucket/", "", "", true},
		{"s3:///key", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			bucket, key, err := parseS3URI(tt.location)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}
