package domain

import "errors"

var (
	// Catalog errors
	ErrCatalogNotFound    = errors.New("catalog not found")
	ErrCatalogNameTaken   = errors.New("catalog name already exists for this owner")
	ErrInvalidCatalogName = errors.New("catalog name must be between 1 and 100 characters")
	ErrInvalidDescription = errors.New("catalog description exceeds 500 characters")

	// Entry link errors
	ErrEntryAlreadyLinked = errors.New("entry is already linked to this catalog")
	ErrEntryNotFound      = errors.New("entry not found")

	// Share errors
	ErrShareNotFound       = errors.New("share not found")
	ErrDuplicateInvitation = errors.New("an invitation already exists for this user")
	ErrShareNotPending     = errors.New("invitation is not pending")
	ErrInvalidRole         = errors.New("invalid share role")
	ErrCannotInviteOwner   = errors.New("catalog owner cannot be invited")
	ErrInviteeNotFound     = errors.New("invitee does not exist")

	// Common errors
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
)
