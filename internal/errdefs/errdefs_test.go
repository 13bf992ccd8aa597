package errdefs

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStepErrorNamesStep(t *testing.T) {
	cause := errors.New("exit status 1")
	err := &StepError{Step: "Installing AutoHub dependencies (npm)", Completed: []string{"a"}, Err: cause}

	assert.Equal(t, "Installing AutoHub dependencies (npm) failed: exit status 1", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestReadinessTimeoutError(t *testing.T) {
	err := &ReadinessTimeoutError{Endpoint: "http://localhost:3001", Timeout: 30 * time.Second}
	assert.Contains(t, err.Error(), "http://localhost:3001")
	assert.Contains(t, err.Error(), "30s")

	var target *ReadinessTimeoutError
	wrapped := &StepError{Step: "Starting AutoHub server", Err: err}
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "http://localhost:3001", target.Endpoint)
}

func TestIsType(t *testing.T) {
	base := WrapCustomError(ErrTypeDependencyInstall, "failed to install packages", errors.New("boom"))
	wrapped := fmt.Errorf("install-deps: %w", base)

	assert.True(t, IsType(wrapped, ErrTypeDependencyInstall))
	assert.False(t, IsType(wrapped, ErrTypeInvalidConfig))
	assert.False(t, IsType(errors.New("plain"), ErrTypeGeneric))
	assert.Equal(t, "failed to install packages: boom", base.Error())
}
