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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Upsolver/iceberg-diag/internal/tablemetrics"
)

const (
	// DefaultEndpoint is the production analysis service.
	DefaultEndpoint = "https://iceberg-auditor.upsolver.com/v2/wizards/optimizer/cli-analyze"

	// DefaultTimeout bounds one analysis round trip. Remote analysis scans
	// table metadata server-side, so this is generous on purpose.
	DefaultTimeout = 5 * time.Minute

	maxResponseSize = 64 * 1024 * 1024
)

// SessionCredentials are the short-lived AWS credentials forwarded to the
// analysis service so it can read the tables being analyzed.
type SessionCredentials struct {
	AccessKey    string
	SecretKey    string
	Region       string
	SessionToken string
}

type analyzeRequest struct {
	AccessKey    string   `json:"accessKey"`
	SecretKey    string   `json:"secretKey"`
	Region       string   `json:"region"`
	TokenSession string   `json:"tokenSession,omitempty"`
	Tables       []string `json:"tables"`
}

// Requester submits tables to the remote analysis service and parses the
// reply.
type Requester struct {
	url    string
	client *http.Client
}

// NewRequester builds a requester for the given endpoint. An empty URL
// selects the production endpoint; a zero timeout selects the default.
func NewRequester(url string, timeout time.Duration) *Requester {
	if url == "" {
		url = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Requester{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// RequestMetrics asks the analysis service to analyze the given tables and
// returns the parsed metric sets. Transport failures and non-2xx replies
// surface as a RequestHandlingError for the whole table list.
func (r *Requester) RequestMetrics(ctx context.Context, creds SessionCredentials, tables []tablemetrics.Table) (*Response, error) {
	names := make([]string, 0, len(tables))
	for _, table := range tables {
		names = append(names, table.FullName())
	}

	body, err := json.Marshal(analyzeRequest{
		AccessKey:    creds.AccessKey,
		SecretKey:    creds.SecretKey,
		Region:       creds.Region,
		TokenSession: creds.SessionToken,
		Tables:       names,
	})
	if err != nil {
		return nil, &RequestHandlingError{Tables: tables, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, &RequestHandlingError{Tables: tables, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &RequestHandlingError{Tables: tables, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestHandlingError{Tables: tables, Err: fmt.Errorf("analysis service returned status %d", resp.StatusCode)}
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, &RequestHandlingError{Tables: tables, Err: fmt.Errorf("read response body: %w", err)}
	}
	if len(payload) > maxResponseSize {
		return nil, &RequestHandlingError{Tables: tables, Err: fmt.Errorf("response exceeds max size (%d bytes)", maxResponseSize)}
	}

	return ParseResponse(payload, tables)
}
