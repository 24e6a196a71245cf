package schemahelper

import "strings"

// Fields references one or more columns of a table. A single column is a
// one-element list; order is significant.
type Fields []string

// Field returns a Fields value referencing the single column name.
func Field(name string) Fields {
	return Fields{name}
}

// fieldList renders fields as a SQL column list: "a,b,c".
func fieldList(fields Fields) string {
	return strings.Join(fields, ",")
}

// fieldListName renders fields for use inside an identifier: "a_b_c".
func fieldListName(fields Fields) string {
	return strings.Join(fields, "_")
}

// constraintName returns the foreign key name for table and fields.
//
// DropForeignKey relies on this producing the same name AddForeignKey used,
// so the format must never depend on anything but its inputs.
func constraintName(table string, fields Fields) string {
	return "fk_" + table + "_" + fieldListName(fields)
}
