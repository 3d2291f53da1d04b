package repository

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/Dan9191/user-service/internal/models"
)

// scanRows reads every remaining row into column -> value maps.
// Text-protocol drivers hand numeric columns back as []byte, so the
// declared column type decides how raw bytes are decoded.
func scanRows(rows *sql.Rows) ([]models.Row, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	out := []models.Row{}
	for rows.Next() {
		values := make([]any, len(types))
		ptrs := make([]any, len(types))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(models.Row, len(types))
		for i, ct := range types {
			row[ct.Name()] = decodeValue(ct.DatabaseTypeName(), values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeValue(dbType string, v any) any {
	raw, ok := v.([]byte)
	if !ok {
		return v
	}
	s := string(raw)
	switch kind := strings.TrimPrefix(strings.ToUpper(dbType), "UNSIGNED "); kind {
	case "TINYINT", "SMALLINT", "MEDIUMINT", "INT", "INTEGER", "BIGINT", "YEAR", "INT2", "INT4", "INT8":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return n
		}
	case "DECIMAL", "NUMERIC", "FLOAT", "DOUBLE", "REAL", "FLOAT4", "FLOAT8":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}
