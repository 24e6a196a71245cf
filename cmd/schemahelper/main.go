// Schemahelper is a cli tool for schema migration handling in MySQL and MariaDB.
//
// Complete documentation is available at https://github.com/denisbrodbeck/schemahelper/.
//
// Usage:
//
// 	schemahelper <command> [arguments]
//
// The commands are
//
// 	create     create a new migration file
// 	migrate    run the database migrations
// 	repair     run REPAIR TABLE on the given tables (default all)
// 	optimize   run OPTIMIZE TABLE on the given tables (default all)
// 	tables     list the tables of the database
// 	version    print schemahelper version
//
// The arguments are
//
// 	-path       path to the migrations files to be executed (default migrations)
// 	-table      name of applied migrations history table (default migrations)
// 	-host       database hostname (default localhost)
// 	-port       database port (default 3306)
// 	-name       database name (default mysql)
// 	-user       database user (default root)
// 	-pass       database password (default empty)
// 	-timeout    connection timeout (default 10s)
// 	-tls        TLS mode: false, true, skip-verify or preferred (default false)
// 	-log-level  debug, info, warn or error (default info)
// 	-config     plain config file with one "flag value" pair per line
//
// Every argument may also be set with an environment variable prefixed with
// SCHEMAHELPER_, e.g. SCHEMAHELPER_PASS. A .env file in the working directory
// is loaded first.
package main

import (
	"os"
)

var usage = `
schemahelper is a schema migration handler for MySQL and MariaDB.

Complete documentation is available at https://github.com/denisbrodbeck/schemahelper/.

Usage:

	schemahelper <command> [arguments]

The commands are:

	create     create a new migration file
	migrate    run the database migrations
	repair     run REPAIR TABLE on the given tables (default all)
	optimize   run OPTIMIZE TABLE on the given tables (default all)
	tables     list the tables of the database
	version    print schemahelper version

The arguments are:

	-path       path to the migrations files to be executed (default migrations)
	-table      name of applied migrations history table (default migrations)
	-host       database hostname (default localhost)
	-port       database port (default 3306)
	-name       database name (default mysql)
	-user       database user (default root)
	-pass       database password (default empty)
	-timeout    connection timeout (default 10s)
	-tls        TLS mode: false, true, skip-verify or preferred (default false)
	-log-level  debug, info, warn or error (default info)
	-config     plain config file with one "flag value" pair per line
`[1:]

// set by ldflags when built
var (
	gitTag = "<not set>"
)

func main() {
	// main() is untestable --> do any work outside of main()
	os.Exit(ParseAndRun(os.Stdout, os.Stderr, os.Stdin, os.Args[1:]))
}
