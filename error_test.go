package granola_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/granola"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := granola.Errorf(granola.ENOTFOUND, "meeting %q not found", "abc1234")

	assert.Equal(t, granola.ENOTFOUND, granola.ErrorCode(err))
	assert.Equal(t, "meeting \"abc1234\" not found", granola.ErrorMessage(err))
}

func TestErrorCode_Wrapped(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("list meetings: %w", granola.Errorf(granola.ETRANSIENT, "rate limited"))

	assert.Equal(t, granola.ETRANSIENT, granola.ErrorCode(err))
	assert.Equal(t, "rate limited", granola.ErrorMessage(err))
}

func TestErrorCode_PlainError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, granola.EINTERNAL, granola.ErrorCode(err))
	assert.Equal(t, "boom", granola.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, granola.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, granola.ErrorMessage(nil))
}
