package secret

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const keychainService = "jsonsql"

// errSecItemNotFound is the exit status `security` uses for a missing item.
const errSecItemNotFound = 44

// KeychainStore keeps secrets in the macOS login keychain by shelling out to
// /usr/bin/security. Every item is filed under the "jsonsql" service with the
// key as its account name.
type KeychainStore struct{}

// NewKeychainStore creates a new KeychainStore.
func NewKeychainStore() *KeychainStore {
	return &KeychainStore{}
}

func (k *KeychainStore) Persistent() bool { return true }

func (k *KeychainStore) Set(key string, value []byte) error {
	// -U updates an existing item in place.
	_, err := security("add-generic-password", "-U", "-s", keychainService, "-a", key, "-w", string(value))
	return err
}

// Get returns nil, nil when no item exists for key.
func (k *KeychainStore) Get(key string) ([]byte, error) {
	out, err := security("find-generic-password", "-s", keychainService, "-a", key, "-w")
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimSuffix(out, "\n")), nil
}

// Delete is a no-op when no item exists for key.
func (k *KeychainStore) Delete(key string) error {
	_, err := security("delete-generic-password", "-s", keychainService, "-a", key)
	if isNotFound(err) {
		return nil
	}
	return err
}

// security runs the keychain CLI and returns its stdout. Failures carry the
// subcommand and stderr.
func security(args ...string) (string, error) {
	cmd := exec.Command("security", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", &keychainError{op: args[0], stderr: strings.TrimSpace(stderr.String()), err: err}
	}
	return string(out), nil
}

type keychainError struct {
	op     string
	stderr string
	err    error
}

func (e *keychainError) Error() string {
	if e.stderr == "" {
		return fmt.Sprintf("keychain %s: %v", e.op, e.err)
	}
	return fmt.Sprintf("keychain %s: %s: %v", e.op, e.stderr, e.err)
}

func (e *keychainError) Unwrap() error { return e.err }

func isNotFound(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr) && exitErr.ExitCode() == errSecItemNotFound
}
