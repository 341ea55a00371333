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

// Package iceberg reads Iceberg table metadata from object storage: the
// metadata JSON, the current snapshot's manifest list and every manifest in
// it. It stops at the file-descriptor level; data files themselves are never
// opened.
package iceberg

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	"github.com/Upsolver/iceberg-diag/internal/logctx"
	"github.com/Upsolver/iceberg-diag/internal/tablemetrics"
)

const defaultManifestWorkers = 8

// S3API is the subset of the S3 client the loader needs.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader fetches and decodes Iceberg metadata trees.
type Loader struct {
	s3      S3API
	workers int
}

// NewLoader builds a loader fetching manifests with up to workers concurrent
// requests (<= 0 selects the default).
func NewLoader(api S3API, workers int) *Loader {
	if workers <= 0 {
		workers = defaultManifestWorkers
	}
	return &Loader{s3: api, workers: workers}
}

type tableMetadata struct {
	CurrentSnapshotID *int64     `json:"current-snapshot-id"`
	Snapshots         []snapshot `json:"snapshots"`
}

type snapshot struct {
	SnapshotID   int64  `json:"snapshot-id"`
	ManifestList string `json:"manifest-list"`
}

// TableScan walks the metadata tree at metadataLocation and returns one file
// descriptor per live file in the current snapshot, plus the number of
// manifests. A table with no current snapshot yields no descriptors and a
// zero manifest count.
func (l *Loader) TableScan(ctx context.Context, metadataLocation string) ([]tablemetrics.FileDescriptor, int, error) {
	logger := logctx.FromContext(ctx)

	raw, err := l.fetch(ctx, metadataLocation)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching table metadata: %w", err)
	}
	if strings.HasSuffix(metadataLocation, ".gz.metadata.json") {
		raw, err = gunzip(raw)
		if err != nil {
			return nil, 0, fmt.Errorf("decompressing table metadata: %w", err)
		}
	}

	var metadata tableMetadata
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, 0, fmt.Errorf("parsing table metadata: %w", err)
	}

	current := currentSnapshot(metadata)
	if current == nil {
		logger.Debug("table has no current snapshot", "location", metadataLocation)
		return nil, 0, nil
	}

	listData, err := l.fetch(ctx, current.ManifestList)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching manifest list: %w", err)
	}
	manifestPaths, err := decodeManifestList(listData)
	if err != nil {
		return nil, 0, fmt.Errorf("decoding manifest list %s: %w", current.ManifestList, err)
	}
	logger.Debug("scanning manifests", "count", len(manifestPaths))

	perManifest := make([][]tablemetrics.FileDescriptor, len(manifestPaths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, manifestPath := range manifestPaths {
		i, manifestPath := i, manifestPath
		g.Go(func() error {
			data, err := l.fetch(gctx, manifestPath)
			if err != nil {
				return fmt.Errorf("fetching manifest %s: %w", manifestPath, err)
			}
			entries, err := decodeManifest(data)
			if err != nil {
				return fmt.Errorf("decoding manifest %s: %w", manifestPath, err)
			}
			perManifest[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var files []tablemetrics.FileDescriptor
	for _, entries := range perManifest {
		files = append(files, entries...)
	}
	return files, len(manifestPaths), nil
}

func currentSnapshot(metadata tableMetadata) *snapshot {
	if metadata.CurrentSnapshotID == nil || *metadata.CurrentSnapshotID < 0 {
		return nil
	}
	for i := range metadata.Snapshots {
		if metadata.Snapshots[i].SnapshotID == *metadata.CurrentSnapshotID {
			return &metadata.Snapshots[i]
		}
	}
	return nil
}

func (l *Loader) fetch(ctx context.Context, location string) ([]byte, error) {
	bucket, key, err := parseS3URI(location)
	if err != nil {
		return nil, err
	}
	out, err := l.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3://%s/%s: %w", bucket, key, err)
	}
	defer func() { _ = out.Body.Close() }()
	return io.ReadAll(out.Body)
}

// parseS3URI splits an s3://bucket/key location. The s3a and s3n schemes
// show up in metadata written by Hadoop-based writers and point at the same
// objects.
func parseS3URI(location string) (bucket, key string, err error) {
	rest := ""
	for _, scheme := range []string{"s3://", "s3a://", "s3n://"} {
		if strings.HasPrefix(location, scheme) {
			rest = strings.TrimPrefix(location, scheme)
			break
		}
	}
	if rest == "" {
		return "", "", fmt.Errorf("unsupported object location %q", location)
	}
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed object location %q", location)
	}
	return bucket, key, nil
}

func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}
