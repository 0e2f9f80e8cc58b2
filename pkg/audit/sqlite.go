package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "audit.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite audit storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStorageError("sqlite", "get_schema_version", err)
	}

	if version != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists an audit record to the database.
func (s *SQLiteStorage) Store(ctx context.Context, record *Record) error {
	query := `
		INSERT INTO audit (
			id, request_id, time,
			method, path, route, query,
			status, duration_ms,
			client_ip, user_agent,
			error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errorVal interface{}
	if record.Error != "" {
		errorVal = record.Error
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.RequestID, record.Time,
		record.Method, record.Path, record.Route, record.Query,
		record.Status, record.DurationMs,
		record.ClientIP, record.UserAgent,
		errorVal,
	)

	if err != nil {
		return NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves audit records matching the query filters, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, query *Query) ([]*Record, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := `
		SELECT id, request_id, time, method, path, route, query,
		       status, duration_ms, client_ip, user_agent, error
		FROM audit`
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY time DESC"

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "iterate", err)
	}

	return records, nil
}

// Count returns the number of audit records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM audit"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// DeleteBefore removes records older than the cutoff time.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM audit WHERE time < ?", cutoff)
	if err != nil {
		return 0, NewStorageError("sqlite", "delete", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, NewStorageError("sqlite", "rows_affected", err)
	}

	return deleted, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return NewStorageError("sqlite", "close", err)
	}
	return nil
}

// buildWhereClause builds the WHERE clause and argument list for a query.
func buildWhereClause(query *Query) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if query.StartTime != nil {
		clauses = append(clauses, "time >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		clauses = append(clauses, "time <= ?")
		args = append(args, *query.EndTime)
	}
	if query.Route != "" {
		clauses = append(clauses, "route = ?")
		args = append(args, query.Route)
	}
	if query.Status != 0 {
		clauses = append(clauses, "status = ?")
		args = append(args, query.Status)
	}

	return strings.Join(clauses, " AND "), args
}

// scanRecord scans a single audit record from a result row.
func scanRecord(rows *sql.Rows) (*Record, error) {
	var record Record
	var errorVal sql.NullString
	var queryVal sql.NullString
	var clientIP sql.NullString
	var userAgent sql.NullString

	err := rows.Scan(
		&record.ID, &record.RequestID, &record.Time,
		&record.Method, &record.Path, &record.Route, &queryVal,
		&record.Status, &record.DurationMs,
		&clientIP, &userAgent,
		&errorVal,
	)
	if err != nil {
		return nil, err
	}

	record.Query = queryVal.String
	record.ClientIP = clientIP.String
	record.UserAgent = userAgent.String
	record.Error = errorVal.String

	return &record, nil
}
