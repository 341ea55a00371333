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
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Upsolver/iceberg-diag/internal/tablemetrics"
)

func TestRequestMetrics(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		_, _ = w.Write(validPayload())
	}))
	defer server.Close()

	requester := NewRequester(server.URL, time.Second)
	creds := SessionCredentials{
		AccessKey:    "AKIA",
		SecretKey:    "secret",
		Region:       "us-east-1",
		SessionToken: "token",
	}
	tables := []tablemetrics.Table{{Database: "db", Name: "events"}}

	resp, err := requester.RequestMetrics(context.Background(), creds, tables)
	require.NoError(t, err)
	require.Len(t, resp.Metrics, 1)
	assert.Equal(t, "db.events", resp.Metrics[0].Table.FullName())

	assert.Equal(t, "AKIA", gotBody["accessKey"])
	assert.Equal(t, "secret", gotBody["secretKey"])
	assert.Equal(t, "us-east-1", gotBody["region"])
	assert.Equal(t, "token", gotBody["tokenSession"])
	assert.Equal(t, []any{"db.events"}, gotBody["tables"])
}

func TestRequestMetricsOmitsEmptySessionToken(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotBody))
		_, _ = w.Write(validPayload())
	}))
	defer server.Close()

	requester := NewRequester(server.URL, time.Second)
	_, err := requester.RequestMetrics(context.Background(), SessionCredentials{AccessKey: "k"}, nil)
	require.NoError(t, err)

	_, present := gotBody["tokenSession"]
	assert.False(t, present)
}

func TestRequestMetricsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	requester := NewRequester(server.URL, time.Second)
	tables := []tablemetrics.Table{{Database: "db", Name: "t"}}

	_, err := requester.RequestMetrics(context.Background(), SessionCredentials{}, tables)
	require.Error(t, err)

	var reqErr *RequestHandlingError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, tables, reqErr.Tables)
}

func TestRequestMetricsTransportError(t *testing.T) {
	requester := NewRequester("http://127.0.0.1:1", 100*time.Millisecond)
	_, err := requester.RequestMetrics(context.Background(), SessionCredentials{}, nil)

	var reqErr *RequestHandlingError
	require.ErrorAs(t, err, &reqErr)
}

func TestRequestMetricsMalformedReplyIsParsingError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected": true}`))
	}))
	defer server.Close()

	requester := NewRequester(server.URL, time.Second)
	_, err := requester.RequestMetrics(context.Background(), SessionCredentials{}, nil)

	var parseErr *ResponseParsingError
	require.ErrorAs(t, err, &parseErr)
}

func TestNewRequesterDefaults(t *testing.T) {
	requester := NewRequester("", 0)
	assert.Equal(t, DefaultEndpoint, requester.url)
	assert.NotNil(t, requester.client)
}
