package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewTranslationID generates a UUIDv7 translation identifier.
// Time-ordered IDs keep audit inserts clustered in B-tree pages.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewTranslationID() TranslationID {
	return TranslationID(uuid.Must(uuid.NewV7()).String())
}

// ParseTranslationID validates and converts a string to TranslationID.
func ParseTranslationID(s string) (TranslationID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return TranslationID(s), nil
}

// TranslationIDTime extracts the timestamp embedded in a UUIDv7 ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func TranslationIDTime(id TranslationID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}

// NewSecretID returns a UUIDv7 without hyphens, the secret_id format of API keys.
func NewSecretID() string {
	return strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
}
