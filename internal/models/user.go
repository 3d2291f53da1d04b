package models

// Row is one record of the user table, keyed by column name.
// Columns are not fixed: whatever the table holds is returned.
type Row map[string]any

// User fields accepted on create and update
const (
	FieldID       = "id"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldName     = "name"
)

// WithoutPassword returns a copy of the row with the password column removed
func (r Row) WithoutPassword() Row {
	out := make(Row, len(r))
	for k, v := range r {
		if k == FieldPassword {
			continue
		}
		out[k] = v
	}
	return out
}

// ID returns the id column, or nil when the row has none
func (r Row) ID() any {
	return r[FieldID]
}
