package schemahelper

import (
	"errors"
	"fmt"
	"testing"
)

func TestDriverError(t *testing.T) {
	uerr := fmt.Errorf("some driver error")
	err := &DriverError{"you won't believe what happened next", uerr}

	got := err.Error()
	want := "you won't believe what happened next: some driver error"
	if got != want {
		t.Errorf("Error messages did not match\ngot  %q\nwant %q\n", got, want)
	}
	got = UnderlyingError(err).Error()
	want = "some driver error"
	if got != want {
		t.Errorf("underlying error does not match\ngot  %q\nwant %q\n", got, want)
	}
	got = UnderlyingError(fmt.Errorf("not DriverError")).Error()
	want = "not DriverError"
	if got != want {
		t.Errorf("underlying error returned something wrong\ngot  %q\nwant %q\n", got, want)
	}
}

func TestDriverErrorWrapped(t *testing.T) {
	uerr := fmt.Errorf("Error 1062: Duplicate entry")
	err := fmt.Errorf("apply: %w", &DriverError{"failed to insert", uerr})

	if !errors.Is(err, uerr) {
		t.Error("errors.Is() should find the driver error")
	}
	if got := UnderlyingError(err); got != uerr {
		t.Errorf("UnderlyingError()\ngot  %v\nwant %v\n", got, uerr)
	}
}

func Test_validateIdentifier(t *testing.T) {
	for _, name := range []string{"migrations", "schema_history", "m2"} {
		if err := validateIdentifier(name, "table"); err != nil {
			t.Errorf("validateIdentifier(%q): unexpected error %v", name, err)
		}
	}
	for _, name := range []string{"", "2migrations", "migrations; DROP TABLE users", "history-table", "`migrations`"} {
		if err := validateIdentifier(name, "table"); !errors.Is(err, ErrInvalidIdentifier) {
			t.Errorf("validateIdentifier(%q): want ErrInvalidIdentifier, got %v", name, err)
		}
	}
}
