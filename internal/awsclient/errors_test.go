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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileNotFoundError(t *testing.T) {
	err := &ProfileNotFoundError{Profile: "staging"}
	assert.Contains(t, err.Error(), `"staging"`)
}

func TestSessionInitializationError(t *testing.T) {
	cause := errors.New("shared config unreadable")

	withProfile := &SessionInitializationError{Profile: "staging", Err: cause}
	assert.Contains(t, withProfile.Error(), "staging")
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", withProfile), cause)

	noProfile := &SessionInitializationError{Err: cause}
	assert.NotContains(t, noProfile.Error(), `""`)
}

func TestSessionValidationError(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := &SessionValidationError{Region: "eu-west-1", Err: cause}

	assert.Contains(t, err.Error(), "eu-west-1")
	assert.ErrorIs(t, err, cause)
}
