package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"jsonsql/internal/dbclient"
	"jsonsql/internal/domain"
	"jsonsql/internal/pipeline"
	"jsonsql/internal/secret"
)

// ─────────────────────────────────────────────────────────────
// Connection Service: saved database destinations
// ─────────────────────────────────────────────────────────────

// CreateDBConnInput is the service-layer DTO for creating/updating connections.
// Defined here to avoid circular imports with the app package.
type CreateDBConnInput struct {
	Name      string `json:"name"`
	Driver    string `json:"driver"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Database  string `json:"database"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	SSLMode   string `json:"sslMode"`
	ExtraJSON string `json:"extraJson"`
}

func (in *CreateDBConnInput) apply(c *domain.DatabaseConnection) {
	c.Name = in.Name
	c.Driver = domain.DatabaseDriver(in.Driver)
	c.Host = in.Host
	c.Port = in.Port
	c.Database = in.Database
	c.Username = in.Username
	c.SSLMode = in.SSLMode
	c.ExtraJSON = in.ExtraJSON
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.ExtraJSON == "" {
		c.ExtraJSON = "{}"
	}
}

// ConnectionService manages saved database connections and keeps a pool of
// live connectors. It implements pipeline.ConnectorProvider.
type ConnectionService struct {
	connStore domain.DatabaseConnectionStore
	secrets   secret.SecretStore

	mu               sync.Mutex
	activeConnectors map[string]*connEntry
}

type connEntry struct {
	connector dbclient.Connector
	createdAt time.Time
}

var _ pipeline.ConnectorProvider = (*ConnectionService)(nil)

// NewConnectionService creates a ConnectionService. secrets may be nil, in
// which case passwords are neither stored nor read.
func NewConnectionService(connStore domain.DatabaseConnectionStore, secrets secret.SecretStore) *ConnectionService {
	return &ConnectionService{
		connStore:        connStore,
		secrets:          secrets,
		activeConnectors: make(map[string]*connEntry),
	}
}

// ── Connection CRUD ────────────────────────────────────────

func (s *ConnectionService) ListConnections() ([]domain.DatabaseConnection, error) {
	return s.connStore.ListConnections()
}

func (s *ConnectionService) GetConnection(id string) (*domain.DatabaseConnection, error) {
	return s.connStore.GetConnection(id)
}

func (s *ConnectionService) CreateConnection(input CreateDBConnInput) (*domain.DatabaseConnection, error) {
	conn := &domain.DatabaseConnection{}
	input.apply(conn)
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	if err := s.connStore.CreateConnection(conn); err != nil {
		return nil, fmt.Errorf("create connection: %w", err)
	}
	if err := s.setPassword(conn, input.Password); err != nil {
		return nil, err
	}
	return conn, nil
}

func (s *ConnectionService) UpdateConnection(id string, input CreateDBConnInput) error {
	conn, err := s.connStore.GetConnection(id)
	if err != nil {
		return err
	}
	input.apply(conn)
	if err := conn.Validate(); err != nil {
		return err
	}
	if err := s.connStore.UpdateConnection(conn); err != nil {
		return err
	}
	if err := s.setPassword(conn, input.Password); err != nil {
		return err
	}
	// Next use reconnects with the new settings.
	s.evict(id)
	return nil
}

func (s *ConnectionService) DeleteConnection(id string) error {
	s.evict(id)
	if s.secrets != nil {
		c := domain.DatabaseConnection{ID: id}
		if err := s.secrets.Delete(c.SecretKey()); err != nil {
			log.Printf("[db] failed to delete secret for %s: %v", id, err)
		}
	}
	return s.connStore.DeleteConnection(id)
}

func (s *ConnectionService) setPassword(conn *domain.DatabaseConnection, password string) error {
	if password == "" || s.secrets == nil {
		return nil
	}
	if err := s.secrets.Set(conn.SecretKey(), []byte(password)); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	if notice := s.PasswordNotice(conn, password); notice != "" {
		log.Printf("[db] %s", notice)
	}
	return nil
}

// PasswordNotice returns a message for the user when password was stored
// for conn but will not outlive the process. It is empty otherwise.
func (s *ConnectionService) PasswordNotice(conn *domain.DatabaseConnection, password string) string {
	if password == "" || s.secrets == nil || secret.IsPersistent(s.secrets) {
		return ""
	}
	return fmt.Sprintf("password for %q is kept in memory only and will be lost on restart; set %s to keep it",
		conn.Name, secret.EnvName(conn.SecretKey()))
}

// ── Test ───────────────────────────────────────────────────

// TestConnection checks a saved connection.
func (s *ConnectionService) TestConnection(ctx context.Context, id string) error {
	connector, err := s.Connector(ctx, id)
	if err != nil {
		return err
	}
	return connector.TestConnection(ctx)
}

// TestConnectionInput checks unsaved settings with a throwaway connector.
func (s *ConnectionService) TestConnectionInput(ctx context.Context, input CreateDBConnInput) error {
	conn := &domain.DatabaseConnection{}
	input.apply(conn)
	if err := conn.Validate(); err != nil {
		return err
	}
	connector, err := dbclient.NewConnector(conn, input.Password)
	if err != nil {
		return fmt.Errorf("open db connection: %w", err)
	}
	defer connector.Close()
	return connector.TestConnection(ctx)
}

// ── Connector Pool ─────────────────────────────────────────

// Connector returns the pooled connector for a saved connection, opening it
// on first use.
func (s *ConnectionService) Connector(_ context.Context, id string) (dbclient.Connector, error) {
	s.mu.Lock()
	if e, ok := s.activeConnectors[id]; ok {
		s.mu.Unlock()
		return e.connector, nil
	}
	s.mu.Unlock()

	conn, err := s.connStore.GetConnection(id)
	if err != nil {
		return nil, fmt.Errorf("get connection %s: %w", id, err)
	}

	var password string
	if s.secrets != nil {
		pw, err := s.secrets.Get(conn.SecretKey())
		if err != nil {
			return nil, fmt.Errorf("read password for %s: %w", conn.Name, err)
		}
		password = string(pw)
	}

	connector, err := dbclient.NewConnector(conn, password)
	if err != nil {
		return nil, fmt.Errorf("open db connection: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another caller may have opened it meanwhile; keep theirs.
	if e, ok := s.activeConnectors[id]; ok {
		connector.Close()
		return e.connector, nil
	}
	s.activeConnectors[id] = &connEntry{connector: connector, createdAt: time.Now()}
	return connector, nil
}

func (s *ConnectionService) evict(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.activeConnectors[id]; ok {
		_ = e.connector.Close()
		delete(s.activeConnectors, id)
	}
}

// Close tears down all active database connectors.
func (s *ConnectionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.activeConnectors {
		_ = entry.connector.Close()
		delete(s.activeConnectors, id)
	}
}
