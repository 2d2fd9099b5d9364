package dbclient

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"
	"time"

	"jsonsql/internal/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// mongoConnector implements Connector for MongoDB. The table name is used as
// the collection and each row becomes one document with fields in column order.
type mongoConnector struct {
	client *mongo.Client
	dbName string
}

func newMongoConnector(conn *domain.DatabaseConnection, password string) (*mongoConnector, error) {
	uri, dbName := buildMongoURI(conn, password)

	logURI := uri
	if password != "" {
		logURI = strings.ReplaceAll(logURI, escapePassword(password), "***")
		logURI = strings.ReplaceAll(logURI, password, "***")
	}
	log.Printf("[MONGO] Connecting with URI: %s (database %s)", logURI, dbName)

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &mongoConnector{client: client, dbName: dbName}, nil
}

// escapePassword escapes a password for the userinfo part of a URI.
func escapePassword(password string) string {
	return strings.TrimPrefix(url.UserPassword("", password).String(), ":")
}

// buildMongoURI returns the connection URI and the database to write into.
// A host that is already a mongodb:// or mongodb+srv:// URI is used as is,
// with <password> placeholders filled in. Credentials are percent-escaped.
func buildMongoURI(conn *domain.DatabaseConnection, password string) (uri, dbName string) {
	if strings.HasPrefix(conn.Host, "mongodb+srv://") || strings.HasPrefix(conn.Host, "mongodb://") {
		uri = conn.Host
		if password != "" {
			uri = strings.ReplaceAll(uri, "<password>", escapePassword(password))
			uri = strings.ReplaceAll(uri, "<db_password>", escapePassword(password))
		}
	} else {
		port := conn.Port
		if port == 0 {
			port = 27017
		}
		if conn.Username != "" {
			uri = fmt.Sprintf("mongodb://%s@%s:%d", url.UserPassword(conn.Username, password).String(), conn.Host, port)
		} else {
			uri = fmt.Sprintf("mongodb://%s:%d", conn.Host, port)
		}

		// extraJSON carries authSource, replicaSet, etc.
		if extras := extraOptions(conn); len(extras) > 0 {
			keys := make([]string, 0, len(extras))
			for k := range extras {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			params := make([]string, len(keys))
			for i, k := range keys {
				params[i] = k + "=" + extras[k]
			}
			uri += "/?" + strings.Join(params, "&")
		}
	}

	dbName = conn.Database
	if dbName == "" {
		dbName = "test"
	}
	return uri, dbName
}

func (m *mongoConnector) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

func (m *mongoConnector) Load(ctx context.Context, table string, columns []string, rows [][]any) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	docs := make([]any, 0, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("row %d has %d values for %d columns", i, len(row), len(columns))
		}
		docs = append(docs, toDocument(columns, row))
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	res, err := m.client.Database(m.dbName).Collection(table).InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert documents: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// toDocument builds an ordered document from one row.
func toDocument(columns []string, row []any) bson.D {
	doc := make(bson.D, len(columns))
	for i, col := range columns {
		doc[i] = bson.E{Key: col, Value: row[i]}
	}
	return doc
}

func (m *mongoConnector) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
