package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsAPIError(t *testing.T) {
	wrapped := fmt.Errorf("saving: %w", ErrNotFound)
	assert.Same(t, ErrNotFound, Wrap(wrapped, "DB_ERROR", "x", http.StatusInternalServerError))
}

func TestWrapPlainError(t *testing.T) {
	err := Wrap(stderrors.New("boom"), "DB_ERROR", "failed to save", http.StatusInternalServerError)
	assert.Equal(t, "DB_ERROR", err.Code)
	assert.Equal(t, "boom", err.Details)
	assert.Equal(t, "DB_ERROR: failed to save", err.Error())
}

func TestValidation(t *testing.T) {
	err := Validation(stderrors.New("必須項目を入力してください"))
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "必須項目を入力してください", err.Message)
}
