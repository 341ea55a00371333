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

// Package catalog lists and resolves Iceberg tables in an AWS Glue data
// catalog.
package catalog

import (
	"context"
	"errors"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"

	"github.com/Upsolver/iceberg-diag/internal/tablemetrics"
)

const (
	tableTypeParameter        = "table_type"
	metadataLocationParameter = "metadata_location"
	icebergTableType          = "ICEBERG"
)

// GlueAPI is the subset of the Glue client the catalog needs.
type GlueAPI interface {
	GetDatabases(ctx context.Context, params *glue.GetDatabasesInput, optFns ...func(*glue.Options)) (*glue.GetDatabasesOutput, error)
	GetTables(ctx context.Context, params *glue.GetTablesInput, optFns ...func(*glue.Options)) (*glue.GetTablesOutput, error)
	GetTable(ctx context.Context, params *glue.GetTableInput, optFns ...func(*glue.Options)) (*glue.GetTableOutput, error)
}

// Catalog wraps Glue catalog lookups for Iceberg tables.
type Catalog struct {
	glue GlueAPI
}

// New builds a Catalog on top of a Glue client.
func New(api GlueAPI) *Catalog {
	return &Catalog{glue: api}
}

// ListDatabases returns every database name in the catalog, sorted.
func (c *Catalog) ListDatabases(ctx context.Context) ([]string, error) {
	var names []string
	var nextToken *string
	for {
		out, err := c.glue.GetDatabases(ctx, &glue.GetDatabasesInput{NextToken: nextToken})
		if err != nil {
			return nil, err
		}
		for _, db := range out.DatabaseList {
			names = append(names, aws.ToString(db.Name))
		}
		nextToken = out.NextToken
		if nextToken == nil {
			break
		}
	}
	sort.Strings(names)
	return names, nil
}

// ListIcebergTables returns the sorted names of the database's Iceberg
// tables, skipping every other table type.
func (c *Catalog) ListIcebergTables(ctx context.Context, database string) ([]string, error) {
	var names []string
	var nextToken *string
	for {
		out, err := c.glue.GetTables(ctx, &glue.GetTablesInput{
			DatabaseName: aws.String(database),
			NextToken:    nextToken,
		})
		if err != nil {
			var notFound *gluetypes.EntityNotFoundException
			if errors.As(err, &notFound) {
				return nil, &DatabaseNotFoundError{Database: database}
			}
			return nil, err
		}
		for _, table := range out.TableList {
			if table.Parameters[tableTypeParameter] == icebergTableType {
				names = append(names, aws.ToString(table.Name))
			}
		}
		nextToken = out.NextToken
		if nextToken == nil {
			break
		}
	}
	sort.Strings(names)
	return names, nil
}

// MatchingTables returns the database's Iceberg tables whose names match the
// glob pattern (e.g. "*", "events_*").
func (c *Catalog) MatchingTables(ctx context.Context, database, pattern string) ([]string, error) {
	names, err := c.ListIcebergTables(ctx, database)
	if err != nil {
		return nil, err
	}
	matches := make([]string, 0, len(names))
	for _, name := range names {
		ok, err := path.Match(pattern, name)
		if err != nil {
			return nil, &InvalidPatternError{Pattern: pattern, Err: err}
		}
		if ok {
			matches = append(matches, name)
		}
	}
	return matches, nil
}

// MetadataLocation resolves the table's current metadata file location,
// verifying on the way that the Glue entry really is an Iceberg table.
func (c *Catalog) MetadataLocation(ctx context.Context, table tablemetrics.Table) (string, error) {
	out, err := c.glue.GetTable(ctx, &glue.GetTableInput{
		DatabaseName: aws.String(table.Database),
		Name:         aws.String(table.Name),
	})
	if err != nil {
		var notFound *gluetypes.EntityNotFoundException
		if errors.As(err, &notFound) {
			return "", &TableNotFoundError{Table: table}
		}
		return "", err
	}

	parameters := out.Table.Parameters
	tableType, ok := parameters[tableTypeParameter]
	if !ok {
		return "", &MissingPropertyError{Table: table, Property: tableTypeParameter}
	}
	if !strings.EqualFold(tableType, icebergTableType) {
		return "", &NotIcebergTableError{Table: table, TableType: tableType}
	}
	location, ok := parameters[metadataLocationParameter]
	if !ok {
		return "", &MissingPropertyError{Table: table, Property: metadataLocationParameter}
	}
	return location, nil
}
