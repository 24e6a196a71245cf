package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/denisbrodbeck/schemahelper"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff"
)

// ParseAndRun parses the command line, and then runs the passed commands.
func ParseAndRun(stdout, stderr io.Writer, stdin io.Reader, args []string) int {
	// out writes command output, one line per call
	out := func(a ...interface{}) {
		fmt.Fprintln(stdout, a...)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "failed to load .env file: %v\n", err)
		return 1
	}

	fs := flag.NewFlagSet("schemahelper", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fs.Output().Write([]byte(usage))
	}
	var (
		flagPath     = fs.String("path", "migrations", "the path to the migrations files to be executed")
		flagTable    = fs.String("table", "migrations", "name of applied migrations history table")
		flagHost     = fs.String("host", "localhost", "database host")
		flagPort     = fs.String("port", "3306", "database port")
		flagName     = fs.String("name", "mysql", "database name")
		flagUser     = fs.String("user", "root", "database user")
		flagPass     = fs.String("pass", "", "database password")
		flagTimeout  = fs.Duration("timeout", time.Second*10, "connection timeout (default 10s)")
		flagTLS      = fs.String("tls", "false", "TLS mode: false, true, skip-verify or preferred")
		flagLogLevel = fs.String("log-level", "info", "log level: debug, info, warn or error")
		_            = fs.String("config", "", "plain config file")
	)
	err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix("SCHEMAHELPER"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	)
	if err != nil {
		if err != flag.ErrHelp {
			fs.Output().Write([]byte(fmt.Sprintf("\nUsage error: %s\n", err)))
		}
		return 1
	}

	logger, err := newLogger(stderr, *flagLogLevel)
	if err != nil {
		fs.Output().Write([]byte(fmt.Sprintf("\nUsage error: %s\n", err)))
		return 1
	}

	// progress of migrations and table maintenance goes to stdout
	say := schemahelper.LogSayer(out)

	commands := fs.Args()
	if len(commands) == 0 {
		fs.Usage()
		return 1
	}

	// open connects lazily: only commands touching the database need one
	open := func() (*sql.DB, int) {
		dsn := createDSN(*flagHost, *flagPort, *flagName, *flagUser, *flagPass, *flagTLS, *flagTimeout)
		db, err := connect(dsn, *flagTimeout)
		if err != nil {
			logger.Error("failed to connect", "host", *flagHost, "port", *flagPort, "err", err)
			return nil, 2
		}
		return db, 0
	}

	// give a generous timeout of 5 minutes
	ctx, cancelFunc := context.WithTimeout(context.Background(), time.Minute*5)
	defer cancelFunc()

	switch strings.ToLower(commands[0]) {
	case "create":
		name := "placeholder"
		if len(commands) >= 2 {
			name = commands[1]
		}

		migration := schemahelper.New(*flagPath)
		path, err := migration.Create(name)
		if err != nil {
			logger.Error("failed to create migration", "err", err)
			return 3
		}
		out("Created Migration: " + path)
	case "migrate":
		db, code := open()
		if db == nil {
			return code
		}
		defer logCloser(db, logger)

		migration := schemahelper.New(*flagPath,
			schemahelper.WithHistoryTable(*flagTable),
			schemahelper.WithLogger(func(v ...interface{}) { logger.Info(fmt.Sprint(v...)) }),
			schemahelper.WithProgress(say),
		)
		applied, err := migration.Apply(ctx, db)
		for _, mig := range applied {
			out("applied: " + mig)
		}
		if len(applied) > 0 {
			out(fmt.Sprintf("Applied migrations: %d", len(applied)))
		}
		if err != nil {
			logger.Error("failed to run migrations", "err", err)
			if dberr := schemahelper.UnderlyingError(err); dberr != err {
				fmt.Fprint(stderr, formatMySQLError(dberr))
			}
			return 3
		}
	case "repair", "optimize", "tables":
		db, code := open()
		if db == nil {
			return code
		}
		defer logCloser(db, logger)

		command := strings.ToLower(commands[0])
		h := schemahelper.NewHelper(schemahelper.SQLExecutor(db), schemahelper.WithSayer(say))
		if err := maintain(ctx, h, out, command, commands[1:]); err != nil {
			logger.Error("failed to run "+command, "err", err)
			var myerr *mysql.MySQLError
			if errors.As(err, &myerr) {
				fmt.Fprint(stderr, formatMySQLError(myerr))
			}
			return 3
		}
	case "version":
		out(gitTag)
	default:
		fs.Output().Write([]byte(fmt.Sprintf("\nUsage error: unknown command %q\n", commands[0])))
		return 1
	}

	return 0
}

// maintain runs one of the table commands with h.
func maintain(ctx context.Context, h *schemahelper.Helper, out func(...interface{}), command string, tables []string) error {
	switch command {
	case "repair":
		return h.RepairTables(ctx, tables...)
	case "optimize":
		return h.OptimizeTables(ctx, tables...)
	case "tables":
		return h.EachTable(ctx, func(table string) error {
			out(table)
			return nil
		})
	}
	return fmt.Errorf("unknown table command %q", command)
}

func createDSN(host, port, name, user, pass, tls string, timeout time.Duration) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = pass
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, port)
	cfg.DBName = name
	cfg.MultiStatements = true
	cfg.ParseTime = true
	if tls != "" && tls != "false" {
		cfg.TLSConfig = tls
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}

	return cfg.FormatDSN()
}

func connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	// "open" just validates the provided dsn
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection to database: %w", err)
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// dsn did validate, now try to actually reach the database
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}

	return db, nil
}
