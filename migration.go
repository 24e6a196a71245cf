package schemahelper

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	defaultHistoryTable    = "migrations"
	defaultTimestampFormat = "2006_01_02_150405"
)

// Logger is a generic logging func.
type Logger func(...interface{})

// FilenameFormatter takes a migration name and formats it into a filename.
type FilenameFormatter func(string) string

// StepFunc is a migration written in Go. It receives a Helper bound to the
// database the migration runs against.
type StepFunc func(ctx context.Context, h *Helper) error

type step struct {
	name string
	fn   StepFunc
}

// A Migration implements database migrations with sql files using the native
// file system restricted to a specific directory tree, plus steps registered
// with WithStep.
//
// An empty Migration path is treated as ".".
type Migration struct {
	path      string
	table     string
	formatter FilenameFormatter
	logger    Logger
	say       Sayer
	steps     []step
}

// New returns a new Migration.
func New(path string, options ...Option) *Migration {
	mig := &Migration{path: path}

	for _, option := range options {
		option(mig)
	}

	if mig.path == "" {
		mig.path = "."
	}
	if mig.formatter == nil {
		mig.formatter = defaultFilenameFormatter
	}
	if mig.table == "" {
		mig.table = defaultHistoryTable
	}
	if mig.logger == nil {
		mig.logger = log.New(io.Discard, "", 0).Print
	}
	if mig.say == nil {
		mig.say = LogSayer(mig.logger)
	}

	return mig
}

// Create creates a new sql migration file in the migration directory.
//
//   cmd:     migration.Create("create_user_table")
//   created: database/migrations/2019_02_25_150455_create_user_table.sql
//   return:  2019_02_25_150455_create_user_table.sql
//
// The migration directory will be automatically created if it doesn't exist.
func (m *Migration) Create(name string) (filename string, err error) {
	file := m.formatter(name)

	if err := os.MkdirAll(m.path, 0755); err != nil {
		return "", fmt.Errorf("failed to create migrations directory %q: %w", m.path, err)
	}

	path := filepath.Join(m.path, file)
	header := fmt.Sprintf("/**\n* Name: %s\n* Date: %s\n*/\n\n", name, time.Now().Format(time.RFC3339))

	if err := os.WriteFile(path, []byte(header), 0644); err != nil {
		return "", fmt.Errorf("failed to create migration at %q: %w", path, err)
	}

	return file, nil
}

// Apply runs all pending migrations against db in name order and returns the
// names of the ones applied. On failure the migrations applied before the
// failing one are returned together with the error.
func (m *Migration) Apply(ctx context.Context, db *sql.DB) (applied []string, err error) {
	if err := validateIdentifier(m.table, "history table"); err != nil {
		return []string{}, err
	}

	available, err := m.available()
	if err != nil {
		return []string{}, err
	}

	exist, err := m.initialized(ctx, db)
	if err != nil {
		return []string{}, err
	}
	if !exist {
		if err := m.initialize(ctx, db); err != nil {
			return []string{}, err
		}
		m.logger("History table created successfully.")
	}

	applied, err = m.applied(ctx, db)
	if err != nil {
		return []string{}, err
	}

	// Are there available migrations which were not applied yet?
	pending := filterExcept(available, applied)
	if len(pending) == 0 {
		return []string{}, nil // nothing to do here
	}
	sort.Strings(pending)

	return m.apply(ctx, db, pending)
}

func (m *Migration) apply(ctx context.Context, db *sql.DB, pending []string) (applied []string, err error) {
	applied = []string{}
	insertCmd := fmt.Sprintf("INSERT INTO %s (migration, execution_time) VALUES (?, ?)", m.table)
	insertErr := func(err error) error {
		return &DriverError{
			fmt.Sprintf("failed to execute SQL statement %q", insertCmd),
			err,
		}
	}

	for _, migration := range pending {
		if fn := m.step(migration); fn != nil {
			// MySQL commits DDL implicitly, so steps never run inside a transaction
			m.say(migration, false)
			start := time.Now()
			if err := fn(ctx, NewHelper(SQLExecutor(db), WithSayer(m.say))); err != nil {
				return applied, fmt.Errorf("failed to run migration step %q: %w", migration, err)
			}
			if _, err := db.ExecContext(ctx, insertCmd, migration, time.Since(start).Seconds()); err != nil {
				return applied, insertErr(err)
			}
			applied = append(applied, migration)
			continue
		}

		path := filepath.Join(m.path, migration)
		buf, err := os.ReadFile(path)
		if err != nil {
			return applied, fmt.Errorf("failed to read file contents of %q: %w", path, err)
		}
		m.say(migration, false)
		if txSupported(buf) {
			err = transaction(ctx, db, m.logger, func(tx *sql.Tx) error {
				// execute migration in transaction
				start := time.Now()
				if _, err := tx.ExecContext(ctx, string(buf)); err != nil {
					return &DriverError{"failed to execute SQL script " + path, err}
				}
				// log executed migration into history table
				if _, err := tx.ExecContext(ctx, insertCmd, migration, time.Since(start).Seconds()); err != nil {
					return insertErr(err)
				}
				return nil
			})
			if err != nil {
				return applied, err
			}
		} else {
			// execute migration with no transaction support
			start := time.Now()
			if _, err := db.ExecContext(ctx, string(buf)); err != nil {
				return applied, &DriverError{"failed to execute SQL script " + path, err}
			}
			// log executed migration into history table
			if _, err := db.ExecContext(ctx, insertCmd, migration, time.Since(start).Seconds()); err != nil {
				return applied, insertErr(err)
			}
		}
		applied = append(applied, migration)
	}

	return applied, nil
}

func (m *Migration) step(name string) StepFunc {
	for _, s := range m.steps {
		if s.name == name {
			return s.fn
		}
	}
	return nil
}

// available lists sql files of the migration directory and registered steps.
// A missing directory is fine as long as steps are registered.
func (m *Migration) available() ([]string, error) {
	migrations := []string{}

	nodes, err := os.ReadDir(m.path)
	if err != nil && !(os.IsNotExist(err) && len(m.steps) > 0) {
		return nil, fmt.Errorf("failed to get list of migration files from %q: %w", m.path, err)
	}
	for _, node := range nodes {
		if node.IsDir() {
			continue
		}
		if filepath.Ext(node.Name()) != ".sql" {
			continue
		}
		migrations = append(migrations, node.Name())
	}

	for _, s := range m.steps {
		for _, name := range migrations {
			if strings.EqualFold(name, s.name) {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateMigration, s.name)
			}
		}
		migrations = append(migrations, s.name)
	}

	return migrations, nil
}

// initialized returns whether the history table for applied migrations
// exists in the current database.
func (m *Migration) initialized(ctx context.Context, db *sql.DB) (bool, error) {
	cmd := `
SELECT EXISTS (
	SELECT 1
	FROM information_schema.tables
	WHERE table_schema = DATABASE()
	AND table_name = ?
)`[1:]
	row := db.QueryRowContext(ctx, cmd, m.table)

	var exist bool
	if err := row.Scan(&exist); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, &DriverError{"failed to verify existence of history table", err}
	}

	return exist, nil
}

// initialize creates the history table
// which keeps track of all applied migrations.
func (m *Migration) initialize(ctx context.Context, db *sql.DB) error {
	stmt := `
CREATE TABLE IF NOT EXISTS %s (
	id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
	migration VARCHAR(255) NOT NULL UNIQUE,
	applied_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	execution_time DOUBLE NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`[1:]
	cmd := fmt.Sprintf(stmt, m.table)

	if _, err := db.ExecContext(ctx, cmd); err != nil {
		return &DriverError{"failed to create history table", err}
	}
	return nil
}

// applied returns all completed migrations from the history table.
func (m *Migration) applied(ctx context.Context, db *sql.DB) ([]string, error) {
	cmd := fmt.Sprintf(`SELECT migration FROM %s ORDER BY id ASC`, m.table)
	rows, err := db.QueryContext(ctx, cmd)
	if err != nil {
		return nil, &DriverError{"failed to query applied migrations", err}
	}
	defer logCloser(rows, m.logger)

	applied := []string{}
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, &DriverError{"failed to row scan entry in query for applied migrations", err}
		}
		applied = append(applied, m)
	}

	if err := rows.Err(); err != nil {
		return nil, &DriverError{"failed to query applied migrations", err}
	}

	return applied, nil
}

// transaction is a utility function to execute SQL inside a transaction
//
// see: https://stackoverflow.com/a/23502629
func transaction(ctx context.Context, db *sql.DB, logger Logger, txFunc func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &DriverError{"failed to begin db transaction", err}
	}

	defer func() {
		if p := recover(); p != nil {
			if err := tx.Rollback(); err != nil {
				logger(err)
			}
			panic(p) // re-throw panic after Rollback
		} else if err != nil {
			// err is non-nil; don't change it
			if err := tx.Rollback(); err != nil {
				logger(err)
			}
		} else {
			err = tx.Commit() // err is nil; if Commit returns error update err
		}
	}()

	err = txFunc(tx)

	return err
}

// txSupported checks whether input is prefixed with `-- schemahelper:no_transaction`
//
// Returns true if input has no transaction suppressor flag in first line.
func txSupported(s []byte) bool {
	return !bytes.HasPrefix(bytes.TrimSpace(s), []byte(`-- schemahelper:no_transaction`))
}

// logCloser is a convenience logger for deferred execution.
//
// This fuction takes any struct implementing the io.Closer interface and closes
// it it upon execution. Errors get logged to the provided logger.
//
//   file, _ := os.Open("some/file")
//   defer logCloser(file, logger)
func logCloser(c io.Closer, logger Logger) {
	if err := c.Close(); err != nil {
		logger("failed to close handle: " + err.Error())
	}
}

// Option controls some aspects of migration behavior.
type Option func(*Migration)

// WithHistoryTable tells New to use the provided name as default history table
// name for applied migrations.
func WithHistoryTable(name string) Option {
	return func(c *Migration) {
		c.table = name
	}
}

// WithLogger tells New to use the provided logger for internal logging.
func WithLogger(logger Logger) Option {
	return func(c *Migration) {
		c.logger = logger
	}
}

// WithFilenameFormatter tells New to use the provided formatter for new migration filenames.
func WithFilenameFormatter(formatter FilenameFormatter) Option {
	return func(c *Migration) {
		c.formatter = formatter
	}
}

// WithProgress tells New where to report progress of applied migrations.
// Defaults to the logger.
func WithProgress(say Sayer) Option {
	return func(c *Migration) {
		c.say = say
	}
}

// WithStep registers a Go migration under name. Steps are ordered together
// with sql files by name, so prefix them the same way:
//
//   schemahelper.WithStep("2019_03_06_101500_orders_fk", func(ctx context.Context, h *schemahelper.Helper) error {
//       _, err := h.AddForeignKey(ctx, "orders", schemahelper.Field("user_id"), "users")
//       return err
//   })
func WithStep(name string, fn StepFunc) Option {
	return func(c *Migration) {
		c.steps = append(c.steps, step{name: name, fn: fn})
	}
}

func defaultFilenameFormatter(name string) string {
	file := time.Now().UTC().Format(defaultTimestampFormat) + "_" + strings.ToLower(name)
	if filepath.Ext(file) != ".sql" {
		file += ".sql"
	}
	return file
}
