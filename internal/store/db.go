package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dreamcrest1/dreamcrest-refresh-sub000/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrNotFound    = errors.New("store: not found")
	ErrDuplicate   = errors.New("store: duplicate value")
	ErrInvalidJSON = errors.New("store: value is not valid JSON")
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

type Store struct {
	DB     *sqlx.DB
	driver string
	now    func() time.Time
}

// NewStore opens the database for the given driver. An empty driver means
// SQLite.
func NewStore(driver, dataSourceName string) (*Store, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if driver == DriverSQLite {
		dataSourceName = sqliteDSN(dataSourceName)
	}

	db, err := sqlx.Open(driver, dataSourceName)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer; serialize through one connection.
		db.SetMaxOpenConns(1)
	}

	return NewStoreFromDB(db), nil
}

// NewStoreFromDB wraps an already opened connection.
func NewStoreFromDB(db *sqlx.DB) *Store {
	return &Store{
		DB:     db,
		driver: db.DriverName(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// sqliteDSN adds the pragmas the store relies on. Timestamps are written in
// SQLite's own format so date functions and comparisons work on them.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_time_format") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// SetClock replaces the time source used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) q(query string) string {
	return s.DB.Rebind(query)
}

// dayExpr formats a UTC timestamp column as its YYYY-MM-DD IST day in the
// active dialect.
func (s *Store) dayExpr(column string) string {
	_, offset := time.Time{}.In(models.IST).Zone()
	minutes := offset / 60
	if s.driver == DriverPostgres {
		return fmt.Sprintf("to_char((%s AT TIME ZONE 'UTC') + interval '%d minutes', 'YYYY-MM-DD')", column, minutes)
	}
	return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s, '%+d minutes')", column, minutes)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func checkAffected(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
