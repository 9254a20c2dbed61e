package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"fieldcatalog/cmd/catalog-service/internal/domain"
)

func TestParseError_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.ErrCatalogNotFound, http.StatusNotFound},
		{domain.ErrShareNotFound, http.StatusNotFound},
		{domain.ErrEntryNotFound, http.StatusNotFound},
		{domain.ErrInviteeNotFound, http.StatusNotFound},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrCatalogNameTaken, http.StatusConflict},
		{domain.ErrEntryAlreadyLinked, http.StatusConflict},
		{domain.ErrDuplicateInvitation, http.StatusConflict},
		{domain.ErrShareNotPending, http.StatusBadRequest},
		{domain.ErrInvalidCatalogName, http.StatusBadRequest},
		{domain.ErrInvalidDescription, http.StatusBadRequest},
		{domain.ErrInvalidRole, http.StatusBadRequest},
		{domain.ErrCannotInviteOwner, http.StatusBadRequest},
		{domain.ErrValidation, http.StatusBadRequest},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		status, code, _ := parseError(tc.err)
		assert.Equal(t, tc.status, status, "error: %v", tc.err)
		assert.Equal(t, tc.status, code)
	}
}

func TestParseError_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("list entries: %w", domain.ErrCatalogNotFound)

	status, _, message := parseError(wrapped)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, message, "catalog not found")
}

func TestParseError_InternalHidesDetails(t *testing.T) {
	_, _, message := parseError(errors.New("pq: connection refused"))

	// 内部错误不向客户端泄露细节
	assert.Equal(t, "internal server error", message)
}
