package schemahelper

import (
	"context"
	"fmt"
)

const defaultReferencedField = "id"

// Sayer reports migration progress. Sub-items are details of the last
// header, e.g. the table currently being repaired.
type Sayer func(msg string, subitem bool)

// LogSayer returns a Sayer writing headers as "-- msg" and sub-items as
// "   -> msg" to logger.
func LogSayer(logger Logger) Sayer {
	return func(msg string, subitem bool) {
		if subitem {
			logger("   -> " + msg)
			return
		}
		logger("-- " + msg)
	}
}

func discardSayer(string, bool) {}

// A Helper issues common MySQL schema statements (foreign keys, primary
// keys, table maintenance) through an Executor.
//
// Helper keeps no state between calls. Errors returned by the Executor are
// passed back unchanged.
type Helper struct {
	exec Executor
	say  Sayer
}

// HelperOption controls some aspects of Helper behavior.
type HelperOption func(*Helper)

// WithSayer tells NewHelper where to report table maintenance progress.
func WithSayer(say Sayer) HelperOption {
	return func(h *Helper) {
		h.say = say
	}
}

// NewHelper returns a Helper sending its statements to exec.
func NewHelper(exec Executor, options ...HelperOption) *Helper {
	h := &Helper{exec: exec}

	for _, option := range options {
		option(h)
	}

	if h.say == nil {
		h.say = discardSayer
	}

	return h
}

type foreignKey struct {
	references Fields
	cascade    bool
}

// ForeignKeyOption controls the foreign key created by AddForeignKey.
type ForeignKeyOption func(*foreignKey)

// References sets the referenced columns, which should be part of the
// referenced table's primary key. Defaults to "id".
func References(fields ...string) ForeignKeyOption {
	return func(fk *foreignKey) {
		fk.references = Fields(fields)
	}
}

// WithoutCascade leaves out ON DELETE CASCADE and ON UPDATE CASCADE, so the
// database default action applies.
func WithoutCascade() ForeignKeyOption {
	return func(fk *foreignKey) {
		fk.cascade = false
	}
}

// AddForeignKey creates a foreign key from table.field against
// referencedTable. The constraint is named fk_<table>_<fields>, which is
// what DropForeignKey expects.
//
//   h.AddForeignKey(ctx, "orders", schemahelper.Field("user_id"), "users")
//   ALTER TABLE orders ADD CONSTRAINT fk_orders_user_id FOREIGN KEY fk_orders_user_id (user_id) REFERENCES users(id) ON DELETE CASCADE ON UPDATE CASCADE
func (h *Helper) AddForeignKey(ctx context.Context, table string, field Fields, referencedTable string, options ...ForeignKeyOption) ([]Row, error) {
	fk := foreignKey{references: Field(defaultReferencedField), cascade: true}
	for _, option := range options {
		option(&fk)
	}
	return h.exec.Execute(ctx, addForeignKeySQL(table, field, referencedTable, fk.references, fk.cascade))
}

// DropForeignKey drops a foreign key from table.field that was created
// before with AddForeignKey.
func (h *Helper) DropForeignKey(ctx context.Context, table string, field Fields) ([]Row, error) {
	return h.exec.Execute(ctx, dropForeignKeySQL(table, field))
}

// AddPrimaryKey creates the primary key of table, which must not have one
// yet.
func (h *Helper) AddPrimaryKey(ctx context.Context, table string, field Fields) ([]Row, error) {
	return h.exec.Execute(ctx, addPrimaryKeySQL(table, field))
}

// ChangePrimaryKey replaces the existing primary key of table. Drop and add
// happen in one ALTER TABLE statement.
func (h *Helper) ChangePrimaryKey(ctx context.Context, table string, field Fields) ([]Row, error) {
	return h.exec.Execute(ctx, changePrimaryKeySQL(table, field))
}

// RepairTables runs REPAIR TABLE on every given table, or on every table of
// the database if none is given. The first failing statement aborts.
func (h *Helper) RepairTables(ctx context.Context, tables ...string) error {
	h.say("Repairing tables...", false)
	return h.maintain(ctx, "REPAIR TABLE ", tables)
}

// OptimizeTables runs OPTIMIZE TABLE on every given table, or on every table
// of the database if none is given. The first failing statement aborts.
func (h *Helper) OptimizeTables(ctx context.Context, tables ...string) error {
	return h.maintain(ctx, "OPTIMIZE TABLE ", tables)
}

func (h *Helper) maintain(ctx context.Context, stmt string, tables []string) error {
	return h.EachTable(ctx, func(table string) error {
		if len(tables) > 0 && !contains(tables, table) {
			return nil
		}
		h.say(table, true)
		rows, err := h.exec.Execute(ctx, stmt+table)
		if err != nil {
			return err
		}
		h.sayStatus(rows)
		return nil
	})
}

// sayStatus reports the Msg_type and Msg_text columns MySQL returns for
// table maintenance statements.
func (h *Helper) sayStatus(rows []Row) {
	for _, row := range rows {
		mapped, ok := row.(MappedRow)
		if !ok {
			continue
		}
		text, ok := mapped.Get("Msg_text")
		if !ok {
			continue
		}
		table, _ := mapped.Get("Table")
		kind, _ := mapped.Get("Msg_type")
		h.say(fmt.Sprintf("%s %s: %s", asString(table), asString(kind), asString(text)), true)
	}
}

// EachTable calls fn with the name of each table of the database, in the
// order SHOW TABLES lists them. The listing is queried anew on every call.
// Iteration stops at the first error returned by fn.
func (h *Helper) EachTable(ctx context.Context, fn func(table string) error) error {
	rows, err := h.exec.Execute(ctx, "SHOW TABLES")
	if err != nil {
		return err
	}
	for _, row := range rows {
		table, err := firstValue(row)
		if err != nil {
			return err
		}
		if err := fn(table); err != nil {
			return err
		}
	}
	return nil
}

// Tables returns the names of all tables of the database.
func (h *Helper) Tables(ctx context.Context) ([]string, error) {
	tables := []string{}
	err := h.EachTable(ctx, func(table string) error {
		tables = append(tables, table)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func addForeignKeySQL(table string, field Fields, referencedTable string, referencedField Fields, cascade bool) string {
	name := constraintName(table, field)
	stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY %s (%s) REFERENCES %s(%s)",
		table, name, name, fieldList(field), referencedTable, fieldList(referencedField))
	if cascade {
		stmt += " ON DELETE CASCADE ON UPDATE CASCADE"
	}
	return stmt
}

func dropForeignKeySQL(table string, field Fields) string {
	return fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s", table, constraintName(table, field))
}

func addPrimaryKeySQL(table string, field Fields) string {
	return fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY(%s)", table, fieldList(field))
}

func changePrimaryKeySQL(table string, field Fields) string {
	return fmt.Sprintf("ALTER TABLE %s DROP PRIMARY KEY, ADD PRIMARY KEY(%s)", table, fieldList(field))
}
