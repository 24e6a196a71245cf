package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// just define this here so we can run go test ./... from package root without warnings
var flagWithDb = flag.Bool("db", false, "Run tests against a test database.")

func Test_createDSN(t *testing.T) {
	dsn := createDSN("db.local", "3307", "app1", "mike", "ve ry$se'cret!", "skip-verify", time.Second*42)

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "mike", cfg.User)
	assert.Equal(t, "ve ry$se'cret!", cfg.Passwd)
	assert.Equal(t, "tcp", cfg.Net)
	assert.Equal(t, "db.local:3307", cfg.Addr)
	assert.Equal(t, "app1", cfg.DBName)
	assert.Equal(t, "skip-verify", cfg.TLSConfig)
	assert.Equal(t, time.Second*42, cfg.Timeout)
	assert.True(t, cfg.MultiStatements)
	assert.True(t, cfg.ParseTime)

	cfg, err = mysql.ParseDSN(createDSN("localhost", "3306", "shop", "root", "", "false", 0))
	require.NoError(t, err)
	assert.Empty(t, cfg.TLSConfig)
	assert.Equal(t, "localhost:3306", cfg.Addr)
}

func Test_formatMySQLError(t *testing.T) {
	err := &mysql.MySQLError{
		Number:   1146,
		SQLState: [5]byte{'4', '2', 'S', '0', '2'},
		Message:  "Table 'shop.nope' doesn't exist",
	}
	want := "Error Code : 1146\nSQL State  : 42S02\nMessage    : Table 'shop.nope' doesn't exist\n"
	assert.Equal(t, want, formatMySQLError(err))

	assert.Equal(t, "plain", formatMySQLError(plainError("plain")))
}

type plainError string

func (e plainError) Error() string { return string(e) }

func TestParseAndRun(t *testing.T) {
	t.Run("version", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := ParseAndRun(&stdout, &stderr, nil, []string{"version"})
		assert.Equal(t, 0, code)
		assert.Equal(t, gitTag+"\n", stdout.String())
	})

	t.Run("create", func(t *testing.T) {
		dir := t.TempDir()
		var stdout, stderr bytes.Buffer
		code := ParseAndRun(&stdout, &stderr, nil, []string{"-path", dir, "create", "add_orders_fk"})
		require.Equal(t, 0, code, stderr.String())

		name := strings.TrimSpace(strings.TrimPrefix(stdout.String(), "Created Migration: "))
		assert.True(t, strings.HasSuffix(name, "_add_orders_fk.sql"), name)
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err)
	})

	t.Run("path from environment", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("SCHEMAHELPER_PATH", dir)
		var stdout, stderr bytes.Buffer
		code := ParseAndRun(&stdout, &stderr, nil, []string{"create"})
		require.Equal(t, 0, code, stderr.String())

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.True(t, strings.HasSuffix(entries[0].Name(), "_placeholder.sql"))
	})

	t.Run("path from config file", func(t *testing.T) {
		dir := t.TempDir()
		config := filepath.Join(t.TempDir(), "schemahelper.conf")
		require.NoError(t, os.WriteFile(config, []byte("path "+dir+"\n"), 0644))
		var stdout, stderr bytes.Buffer
		code := ParseAndRun(&stdout, &stderr, nil, []string{"-config", config, "create", "x"})
		require.Equal(t, 0, code, stderr.String())

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("usage errors", func(t *testing.T) {
		for _, args := range [][]string{
			{},
			{"explode"},
			{"-log-level", "loud", "version"},
			{"-nope"},
		} {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, 1, ParseAndRun(&stdout, &stderr, nil, args), "args %v", args)
		}
	})

	t.Run("unreachable database", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := ParseAndRun(&stdout, &stderr, nil, []string{"-host", "127.0.0.1", "-port", "1", "-timeout", "1s", "tables"})
		assert.Equal(t, 2, code)
		assert.Contains(t, stderr.String(), "failed to connect")
	})
}

func Test_connect(t *testing.T) {
	if !*flagWithDb {
		t.Skip("skipping test: need a database")
	}
	dsn := os.Getenv("SCHEMAHELPER_TEST_DSN")
	if dsn == "" {
		dsn = "root@tcp(localhost:3306)/mysql?timeout=5s"
	}

	db, err := connect(dsn, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	db.Close()
}
