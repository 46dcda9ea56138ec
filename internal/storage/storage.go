// Package storage defines the key-value interface that backs all persisted state.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Keys used by the state containers.
const (
	// AccountsKey holds the JSON array of registered accounts.
	AccountsKey = "accounts"

	// SessionKey holds the active session record, if any.
	SessionKey = "session"

	// tasksKeyPrefix is joined with an account id to form its task collection key.
	tasksKeyPrefix = "tasks:"
)

// ErrNotFound is returned by Get when a key is absent.
var ErrNotFound = errors.New("key not found")

// Store is a synchronous key-value store.
// Values are opaque bytes; callers store JSON documents.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
}

// TasksKey returns the key of the task collection owned by accountID.
func TasksKey(accountID string) string {
	return tasksKeyPrefix + accountID
}

// GetJSON decodes the value under key into v.
// Returns false with a nil error if the key is absent.
func GetJSON(s Store, key string, v any) (bool, error) {
	data, err := s.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
