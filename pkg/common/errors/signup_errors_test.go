package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signup-portal/pkg/core/signup/model"
)

func TestValidationFailureIsPublic(t *testing.T) {
	err := NewValidationFailure([]model.Violation{
		{Field: "name", Message: "Please enter in a name."},
		{Field: "email", Message: "Please enter in an email address."},
	})
	require.NotNil(t, err)

	assert.True(t, IsValidationFailure(err))
	assert.True(t, IsPublic(err))
	assert.False(t, IsTransportFailure(err))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"Please enter in a name.", "Please enter in an email address."}, verr.Messages())
}

func TestValidationFailureNilWithoutViolations(t *testing.T) {
	assert.Nil(t, NewValidationFailure(nil))
}

func TestTransportFailureIsPrivate(t *testing.T) {
	err := NewTransportFailure("abc", 500, nil)

	assert.True(t, IsTransportFailure(err))
	assert.False(t, IsPublic(err))
	assert.True(t, errors.Is(err, ErrSubmissionRejected))
	assert.Contains(t, err.Error(), "unexpected status 500")

	wrapped := fmt.Errorf("dispatch: %w", NewTransportFailure("def", 0, errors.New("dial tcp: refused")))
	var terr *TransportError
	require.True(t, errors.As(wrapped, &terr))
	assert.Equal(t, 0, terr.StatusCode)
	assert.Equal(t, "def", terr.SubmissionID)
}

func TestReferenceFailureWrapsSentinel(t *testing.T) {
	err := NewReferenceFailure(errors.New("timeout"))
	assert.True(t, errors.Is(err, ErrReferenceUnavailable))
	assert.Contains(t, err.Error(), "timeout")
}
