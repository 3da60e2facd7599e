package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neo4jconfig "github.com/neo4j/neo4j-go-driver/v5/neo4j/config"

	"cognitive-core/internal/ids"
)

// Neo4jMirrorConfig holds connection settings for the optional best-effort
// Neo4j graph mirror.
type Neo4jMirrorConfig struct {
	URI      string
	Username string
	Password string
	Database string
	Timeout  time.Duration
}

// Neo4jMirror mirrors relationship edges into a Neo4j graph alongside the
// Knowledge Base's in-memory graph, so relationships can be queried with
// Cypher by external tooling. It is best-effort: callers are expected to
// ignore its errors (the in-memory graph is authoritative).
type Neo4jMirror struct {
	driver   neo4j.DriverWithContext
	database string
	timeout  time.Duration
}

// NewNeo4jMirror dials Neo4j and verifies connectivity.
func NewNeo4jMirror(cfg Neo4jMirrorConfig) (*Neo4jMirror, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4jconfig.Config) {
			c.MaxConnectionPoolSize = 20
			c.ConnectionAcquisitionTimeout = cfg.Timeout
			c.SocketConnectTimeout = cfg.Timeout
		},
	)
	if err != nil {
		return nil, fmt.Errorf("knowledge.NewNeo4jMirror: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("knowledge.NewNeo4jMirror: verify connectivity: %w", err)
	}

	database := cfg.Database
	if database == "" {
		database = "neo4j"
	}
	return &Neo4jMirror{driver: driver, database: database, timeout: cfg.Timeout}, nil
}

// Close releases the driver.
func (m *Neo4jMirror) Close(ctx context.Context) error {
	return m.driver.Close(ctx)
}

// MirrorRelationship upserts both endpoint nodes and a RELATES_TO edge
// between them, satisfying the GraphMirror contract.
func (m *Neo4jMirror) MirrorRelationship(from, to ids.ID) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	session := m.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: m.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer func() { _ = session.Close(ctx) }()

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx,
			`MERGE (a:Entry {id: $from}) MERGE (b:Entry {id: $to}) MERGE (a)-[:RELATES_TO]->(b)`,
			map[string]any{"from": from.String(), "to": to.String()},
		)
		return nil, err
	})
	return err
}
