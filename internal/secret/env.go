package secret

import (
	"os"
	"strings"
)

// EnvStore reads secrets from JSONSQL_SECRET_<KEY> environment variables,
// where KEY is the upper-cased key with every non-alphanumeric rune replaced
// by '_'. Values set at runtime are held in memory and shadow the environment.
type EnvStore struct {
	mem *MemoryStore
}

func NewEnvStore() *EnvStore {
	return &EnvStore{mem: NewMemoryStore()}
}

// EnvName returns the environment variable consulted for key.
func EnvName(key string) string {
	var b strings.Builder
	b.WriteString("JSONSQL_SECRET_")
	for _, r := range strings.ToUpper(key) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (e *EnvStore) Set(key string, value []byte) error {
	return e.mem.Set(key, value)
}

func (e *EnvStore) Get(key string) ([]byte, error) {
	if v, _ := e.mem.Get(key); v != nil {
		return v, nil
	}
	if v, ok := os.LookupEnv(EnvName(key)); ok {
		return []byte(v), nil
	}
	return nil, nil
}

func (e *EnvStore) Delete(key string) error {
	return e.mem.Delete(key)
}
