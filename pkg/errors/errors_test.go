package errors

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetail_DoesNotMutateSentinel(t *testing.T) {
	detailed := ErrValidation.WithDetail("message", "field x is required")

	assert.Equal(t, "field x is required", detailed.Details["message"])
	assert.Empty(t, ErrValidation.Details, "sentinel must stay pristine")

	response := ToErrorResponse(ErrValidation)
	_, hasDetails := response["details"]
	assert.False(t, hasDetails, "a fresh sentinel response must not carry earlier details")
}

func TestWithDetail_CopiesExistingDetails(t *testing.T) {
	first := ErrValidation.WithDetail("field", "name")
	second := first.WithDetail("message", "name is required")

	assert.Equal(t, "name", second.Details["field"])
	assert.NotContains(t, first.Details, "message")
}

func TestWithDetail_ConcurrentUseOfSentinel(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := ErrValidation.WithDetail("message", fmt.Sprintf("request %d", i))
			assert.Equal(t, fmt.Sprintf("request %d", i), err.Details["message"])
		}(i)
	}
	wg.Wait()
}

func TestWrap_PreservesCodeAndCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, ErrTransportUnavailable)

	require.NotNil(t, err)
	assert.True(t, IsTransportUnavailable(err))
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, ErrTransportUnavailable.Cause, "sentinel must stay pristine")
}
