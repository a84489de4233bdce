package postgres

//nolint:revive
import (
	"context"
	"errors"
	"fmt"
	"hotel/config"
	"net"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	postgresMaxIdleConnection = 10
	postgresMaxOpenConnection = 10
	postgresConnMaxLifetime   = 30 * time.Minute
)

var ErrNotConnected = errors.New("postgres connection is not established")

// Connection splits traffic between a read replica and the primary. Both may
// point at the same server.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(cfg *config.Config) *Connection {
	return &Connection{
		Read:  CreatePostgresReadConn(*cfg),
		Write: CreatePostgresWriteConn(*cfg),
	}
}

// Ping checks both pools.
func (c *Connection) Ping(ctx context.Context) error {
	if c == nil || c.Read == nil || c.Write == nil {
		return ErrNotConnected
	}

	if err := c.Write.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping write database: %w", err)
	}

	if err := c.Read.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping read database: %w", err)
	}

	return nil
}

func (c *Connection) Close() error {
	if c == nil {
		return nil
	}

	var errs []error

	if c.Write != nil {
		errs = append(errs, c.Write.Close())
	}

	if c.Read != nil && c.Read != c.Write {
		errs = append(errs, c.Read.Close())
	}

	return errors.Join(errs...)
}

func getDBName(cfg config.Config, baseName string) string {
	return cfg.DB.Postgres.Prefix + baseName
}

// CreatePostgresWriteConn creates a database connection for write access.
func CreatePostgresWriteConn(cfg config.Config) *sqlx.DB {
	write := cfg.DB.Postgres.Write

	return CreatePostgresConnection(connectionOptions{
		name:     "write",
		username: write.Username,
		password: write.Password,
		host:     write.Host,
		port:     write.Port,
		dbName:   getDBName(cfg, write.Name),
		sslMode:  write.SSLMode,
		maxRetry: cfg.DB.Postgres.MaxRetry,
		waitTime: cfg.DB.Postgres.RetryWaitTime,
	})
}

// CreatePostgresReadConn creates a database connection for read access.
func CreatePostgresReadConn(cfg config.Config) *sqlx.DB {
	read := cfg.DB.Postgres.Read

	return CreatePostgresConnection(connectionOptions{
		name:     "read",
		username: read.Username,
		password: read.Password,
		host:     read.Host,
		port:     read.Port,
		dbName:   getDBName(cfg, read.Name),
		sslMode:  read.SSLMode,
		maxRetry: cfg.DB.Postgres.MaxRetry,
		waitTime: cfg.DB.Postgres.RetryWaitTime,
	})
}

type connectionOptions struct {
	name     string
	username string
	password string
	host     string
	port     string
	dbName   string
	sslMode  string
	maxRetry int
	waitTime int
}

// CreatePostgresConnection retries until the server accepts a connection or
// maxRetry is exhausted, in which case it returns nil.
func CreatePostgresConnection(opts connectionOptions) *sqlx.DB {
	descriptor := fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		opts.username,
		opts.password,
		net.JoinHostPort(opts.host, opts.port),
		opts.dbName,
		opts.sslMode,
	)

	logger := log.With().
		Str("name", opts.name).
		Str("host", opts.host).
		Str("port", opts.port).
		Str("dbName", opts.dbName).
		Logger()

	for retry := range max(opts.maxRetry, 1) {
		sqlDB, err := sqlx.Connect("postgres", descriptor)
		if err == nil {
			logger.Info().Msg("Connected to database")

			sqlDB.SetMaxIdleConns(postgresMaxIdleConnection)
			sqlDB.SetMaxOpenConns(postgresMaxOpenConnection)
			sqlDB.SetConnMaxLifetime(postgresConnMaxLifetime)

			return sqlDB
		}

		logger.Error().Err(err).Int("attempt", retry+1).Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(opts.waitTime) * time.Second)
	}

	return nil
}
