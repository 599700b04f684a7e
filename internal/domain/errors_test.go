package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"automarket/internal/domain"
	"automarket/pkg/errcodes"
)

func TestAppError(t *testing.T) {
	rq := require.New(t)

	cause := errors.New("redis: connection refused")
	err := fmt.Errorf("runner.Start: %w", domain.WrapError(cause, errcodes.RunInProgress, "a run is already in progress"))

	rq.True(domain.IsAppError(err))
	rq.ErrorIs(err, cause)
	rq.True(domain.HasCode(err, errcodes.RunInProgress))
	rq.False(domain.HasCode(err, errcodes.RunNotFound))
	rq.Contains(err.Error(), "a run is already in progress: redis: connection refused")

	code, ok := domain.GetCode(errors.New("plain"))
	rq.False(ok)
	rq.Empty(code)

	var appErr *domain.AppError
	rq.ErrorAs(err, &appErr)
	rq.Equal(errcodes.RunInProgress, appErr.ErrorCode())
	rq.Equal("a run is already in progress", appErr.Description())
}
