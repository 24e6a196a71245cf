// Package schemahelper provides SQL schema migration handling for MySQL and MariaDB.
//
//   https://github.com/denisbrodbeck/schemahelper
//
// Features
//
// • forward-only migrations from sql files and Go steps
//
// • helpers for foreign keys, primary keys and table maintenance
//
// • MySQL / MariaDB support only
//
// A Helper turns a table name and a list of columns into one ALTER TABLE,
// REPAIR TABLE or OPTIMIZE TABLE statement and hands it to an Executor.
// Foreign keys get a predictable name, fk_<table>_<columns>, so they can be
// dropped later by repeating the arguments used to create them:
//
//   h := schemahelper.NewHelper(schemahelper.SQLExecutor(db))
//   h.AddForeignKey(ctx, "orders", schemahelper.Field("user_id"), "users")
//   h.DropForeignKey(ctx, "orders", schemahelper.Field("user_id"))
//
// No assumption is made on the provided MySQL driver, the only dependency is `sql.DB`.
// Connections running sql file migrations need multi statement support
// (multiStatements=true for github.com/go-sql-driver/mysql).
package schemahelper
