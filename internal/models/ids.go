package models

import (
	"github.com/google/uuid"

	"pawpair/backend/pkg/apperrors"
)

// ValidateIDs reports ErrInvalidID unless every id is a UUID.
func ValidateIDs(ids ...string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return apperrors.ErrInvalidID
		}
	}
	return nil
}
