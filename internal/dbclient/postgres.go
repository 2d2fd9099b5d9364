package dbclient

import (
	"net"
	"net/url"
	"strconv"

	"jsonsql/internal/domain"

	_ "github.com/lib/pq"
)

// buildPostgresDSN returns a postgres:// URL. Credentials are URL-escaped, so
// passwords may contain any character. Extra options become query parameters.
func buildPostgresDSN(conn *domain.DatabaseConnection, password string) string {
	port := conn.Port
	if port == 0 {
		port = 5432
	}

	q := url.Values{}
	for k, v := range extraOptions(conn) {
		q.Set(k, v)
	}
	if conn.SSLMode != "" {
		q.Set("sslmode", conn.SSLMode)
	} else if q.Get("sslmode") == "" {
		q.Set("sslmode", "disable")
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(conn.Host, strconv.Itoa(port)),
		Path:     "/" + conn.Database,
		RawQuery: q.Encode(),
	}
	if conn.Username != "" {
		u.User = url.UserPassword(conn.Username, password)
	}
	return u.String()
}
