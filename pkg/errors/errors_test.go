package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/ashkam58/mathflix/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "game",
			ID:       "dsa-search-01",
		}
		assert.Equal(t, "game with ID dsa-search-01 not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("snapshot", "MATHFLIX_DB_V1")
		wrapped := fmt.Errorf("loading: %w", base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "id",
			Message: "cannot be empty",
		}
		assert.Equal(t, "validation failed for field id: cannot be empty", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("", nil, "invalid definitions")
		assert.Equal(t, "validation failed: invalid definitions", err.Error())
	})
}

func TestDuplicateDefinitionError(t *testing.T) {
	err := pkgerrors.NewDuplicateDefinitionError("a", 0, 1)
	assert.Contains(t, err.Error(), `"a"`)
	assert.Contains(t, err.Error(), "[0 1]")
	assert.True(t, pkgerrors.IsDuplicateDefinition(err))
	assert.False(t, pkgerrors.IsValidationError(err))

	var dup *pkgerrors.DuplicateDefinitionError
	require.True(t, errors.As(fmt.Errorf("reconcile: %w", err), &dup))
	assert.Equal(t, "a", dup.ID)
}

func TestSnapshotUnreadableError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := pkgerrors.NewSnapshotUnreadableError("MATHFLIX_DB_V1", cause)

	assert.True(t, pkgerrors.IsSnapshotUnreadable(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "MATHFLIX_DB_V1")
}

func TestConflictError(t *testing.T) {
	err := pkgerrors.NewConflictError("catalog", 3, 4)
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Equal(t, "snapshot catalog changed concurrently (expected version 3, found 4)", err.Error())
}

func TestWrapHelpers(t *testing.T) {
	assert.Nil(t, pkgerrors.WrapIO("read", "/tmp/x", nil))
	assert.Nil(t, pkgerrors.WrapParse("json", "", nil))
	assert.Nil(t, pkgerrors.WrapResource("save", "snapshot", "", nil))
	assert.Nil(t, pkgerrors.WrapValidation("id", nil))

	cause := pkgerrors.ErrNotFound
	ioErr := pkgerrors.WrapIO("read", "/tmp/x", cause)
	assert.ErrorIs(t, ioErr, cause)

	var parseErr *pkgerrors.ParseError
	require.ErrorAs(t, pkgerrors.WrapParse("yaml", "games.yaml", errors.New("bad indent")), &parseErr)
	assert.Equal(t, "parse error in yaml file games.yaml: bad indent", parseErr.Error())

	resErr := pkgerrors.WrapResource("save", "snapshot", "k", cause)
	assert.True(t, pkgerrors.IsNotFound(resErr))
}
