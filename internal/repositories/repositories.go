// Package repositories persists hunts and playbooks in SQLite.
package repositories

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/myrjola/huntdesk/internal/errors"
)

// ErrNotFound is returned when no record matches the lookup.
var ErrNotFound = errors.NewSentinel("not found")

// newID returns a time-ordered identifier.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", errors.Wrap(err, "generate uuid")
	}
	return id.String(), nil
}

// marshalList encodes v as a JSON array, encoding nil slices as [] instead of null.
func marshalList[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "marshal json")
	}
	return string(b), nil
}

func unmarshalList[T any](s string) ([]T, error) {
	v := []T{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, errors.Wrap(err, "unmarshal json")
	}
	return v, nil
}
