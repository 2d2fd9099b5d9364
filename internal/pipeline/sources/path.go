package sources

import (
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
)

// extractDataPath returns the raw JSON at a dot-separated path such as
// "data.items". Array segments use jsonparser's "[n]" syntax. An empty path
// returns data unchanged.
func extractDataPath(data []byte, path string) ([]byte, error) {
	path = strings.Trim(path, ". ")
	if path == "" {
		return data, nil
	}
	keys := strings.Split(path, ".")
	value, dataType, _, err := jsonparser.Get(data, keys...)
	if dataType == jsonparser.NotExist {
		return nil, fmt.Errorf("invalid data path: %q not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("data path %q: %w", path, err)
	}
	if dataType != jsonparser.Array {
		return nil, fmt.Errorf("data path %q points to %s, want array", path, dataType)
	}
	return value, nil
}
