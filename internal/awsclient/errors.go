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
	"errors"
	"fmt"
)

// ErrNoRegion means neither the flags, the profile nor the environment
// provided an AWS region.
var ErrNoRegion = errors.New("no AWS region specified")

// ProfileNotFoundError means the named shared-config profile does not exist.
type ProfileNotFoundError struct {
	Profile string
}

func (e *ProfileNotFoundError) Error() string {
	return fmt.Sprintf("the AWS profile %q does not exist", e.Profile)
}

// SessionInitializationError wraps any other failure while resolving AWS
// configuration.
type SessionInitializationError struct {
	Profile string
	Err     error
}

func (e *SessionInitializationError) Error() string {
	if e.Profile == "" {
		return fmt.Sprintf("initializing AWS session: %v", e.Err)
	}
	return fmt.Sprintf("initializing AWS session for profile %q: %v", e.Profile, e.Err)
}

func (e *SessionInitializationError) Unwrap() error { return e.Err }

// SessionValidationError means the probe call against Glue failed, typically
// bad credentials or an unreachable regional endpoint.
type SessionValidationError struct {
	Region string
	Err    error
}

func (e *SessionValidationError) Error() string {
	return fmt.Sprintf("could not connect to AWS in region %q: %v", e.Region, e.Err)
}

func (e *SessionValidationError) Unwrap() error { return e.Err }
