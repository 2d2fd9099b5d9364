package secret

import (
	"errors"
	"testing"
)

func TestEnvName(t *testing.T) {
	tests := map[string]string{
		"db:abc-123": "JSONSQL_SECRET_DB_ABC_123",
		"plain":      "JSONSQL_SECRET_PLAIN",
	}
	for key, want := range tests {
		if got := EnvName(key); got != want {
			t.Errorf("EnvName(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestEnvStore(t *testing.T) {
	t.Setenv("JSONSQL_SECRET_DB_C1", "from-env")
	s := NewEnvStore()

	got, err := s.Get("db:c1")
	if err != nil || string(got) != "from-env" {
		t.Fatalf("Get() = %q, %v; want from-env", got, err)
	}

	if err := s.Set("db:c1", []byte("override")); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Get("db:c1"); string(got) != "override" {
		t.Errorf("Get() after Set = %q, want override", got)
	}

	s.Delete("db:c1")
	if got, _ := s.Get("db:c1"); string(got) != "from-env" {
		t.Errorf("Get() after Delete = %q, want from-env", got)
	}

	if got, err := s.Get("db:missing"); err != nil || got != nil {
		t.Errorf("Get(missing) = %q, %v; want nil, nil", got, err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	buf := []byte("pw")
	s.Set("k", buf)
	buf[0] = 'x'
	if got, _ := s.Get("k"); string(got) != "pw" {
		t.Errorf("Get() = %q, want pw (store must copy)", got)
	}
	s.Delete("k")
	if got, _ := s.Get("k"); got != nil {
		t.Errorf("Get() after Delete = %q", got)
	}
}

func TestKeychainError(t *testing.T) {
	base := errors.New("exit status 1")
	err := &keychainError{op: "find-generic-password", stderr: "bad item", err: base}
	if got, want := err.Error(), "keychain find-generic-password: bad item: exit status 1"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, base) {
		t.Error("keychainError should unwrap to the exec error")
	}
	if isNotFound(err) || isNotFound(nil) {
		t.Error("isNotFound should only match exit status 44")
	}
}

func TestIsPersistent(t *testing.T) {
	if IsPersistent(NewMemoryStore()) {
		t.Error("MemoryStore must not report persistent")
	}
	if IsPersistent(NewEnvStore()) {
		t.Error("EnvStore must not report persistent")
	}
	if !IsPersistent(NewKeychainStore()) {
		t.Error("KeychainStore must report persistent")
	}
}
