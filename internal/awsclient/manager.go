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

package awsclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/Upsolver/iceberg-diag/internal/auditor"
)

// Manager holds one resolved AWS configuration and the service clients built
// from it. All clients share credentials, so one up-front validation covers
// every later call.
type Manager struct {
	cfg     aws.Config
	profile string

	glueClient *glue.Client
	s3Client   *s3.Client
	stsClient  *sts.Client
}

type managerConfig struct {
	profile string
	region  string
}

// ManagerOption is a functional option for configuring the Manager.
type ManagerOption func(*managerConfig)

// WithProfile selects a shared-config profile (empty = default chain).
func WithProfile(profile string) ManagerOption {
	return func(c *managerConfig) {
		c.profile = profile
	}
}

// WithRegion overrides the region from the profile or environment.
func WithRegion(region string) ManagerOption {
	return func(c *managerConfig) {
		c.region = region
	}
}

// NewManager resolves AWS config and builds the Glue, S3 and STS clients.
func NewManager(ctx context.Context, opts ...ManagerOption) (*Manager, error) {
	mc := &managerConfig{}
	for _, opt := range opts {
		opt(mc)
	}

	var loadOpts []func(*config.LoadOptions) error
	if mc.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(mc.profile))
	}
	if mc.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(mc.region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		var notExist config.SharedConfigProfileNotExistError
		if errors.As(err, &notExist) {
			return nil, &ProfileNotFoundError{Profile: mc.profile}
		}
		return nil, &SessionInitializationError{Profile: mc.profile, Err: err}
	}
	if cfg.Region == "" {
		return nil, ErrNoRegion
	}

	return &Manager{
		cfg:        cfg,
		profile:    mc.profile,
		glueClient: glue.NewFromConfig(cfg),
		s3Client:   s3.NewFromConfig(cfg),
		stsClient:  sts.NewFromConfig(cfg),
	}, nil
}

// Validate probes the session with a minimal Glue call so credential or
// endpoint problems surface before any table work starts. A single attempt
// keeps a dead endpoint from stalling startup behind retries.
func (m *Manager) Validate(ctx context.Context) error {
	_, err := m.glueClient.GetDatabases(ctx, &glue.GetDatabasesInput{
		MaxResults: aws.Int32(1),
	}, func(o *glue.Options) {
		o.RetryMaxAttempts = 1
	})
	if err != nil {
		return &SessionValidationError{Region: m.cfg.Region, Err: err}
	}

	if identity, err := m.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{}); err == nil {
		slog.Debug("AWS session validated",
			slog.String("region", m.cfg.Region),
			slog.String("arn", aws.ToString(identity.Arn)))
	}
	return nil
}

// Glue returns the shared Glue client.
func (m *Manager) Glue() *glue.Client { return m.glueClient }

// S3 returns the shared S3 client.
func (m *Manager) S3() *s3.Client { return m.s3Client }

// Region returns the resolved region.
func (m *Manager) Region() string { return m.cfg.Region }

// SessionCredentials retrieves the session's current credentials in the
// shape the remote analysis service expects.
func (m *Manager) SessionCredentials(ctx context.Context) (auditor.SessionCredentials, error) {
	creds, err := m.cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return auditor.SessionCredentials{}, fmt.Errorf("retrieving session credentials: %w", err)
	}
	return auditor.SessionCredentials{
		AccessKey:    creds.AccessKeyID,
		SecretKey:    creds.SecretAccessKey,
		SessionToken: creds.SessionToken,
		Region:       m.cfg.Region,
	}, nil
}
