package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-sql-driver/mysql"
)

// newLogger returns the diagnostics logger writing to w at the named level.
func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           lvl,
	}), nil
}

func logCloser(c io.Closer, l *log.Logger) {
	if err := c.Close(); err != nil {
		l.Warn("failed to close handle", "err", err)
	}
}

func formatMySQLError(err error) string {
	var e *mysql.MySQLError
	if errors.As(err, &e) {
		msg := fmt.Sprintf("Error Code : %d\n", e.Number)
		if e.SQLState != [5]byte{} {
			msg += fmt.Sprintf("SQL State  : %s\n", e.SQLState[:])
		}
		msg += fmt.Sprintf("Message    : %s\n", e.Message)
		return msg
	}
	return err.Error()
}
