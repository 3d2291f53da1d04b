package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Dan9191/user-service/internal/config"
)

// Dialect captures the SQL differences between the supported drivers
type Dialect struct {
	name      string
	quoteChar string
	numbered  bool
	returning bool
}

// MySQL uses backtick identifiers, ? placeholders and LastInsertId
var MySQL = Dialect{name: config.DriverMySQL, quoteChar: "`"}

// Postgres uses double-quoted identifiers, $n placeholders and RETURNING
var Postgres = Dialect{name: config.DriverPostgres, quoteChar: `"`, numbered: true, returning: true}

// DialectFor resolves a driver name to its dialect
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverMySQL:
		return MySQL, nil
	case config.DriverPostgres:
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("no dialect for driver %q", driver)
}

// Name is the database/sql driver name
func (d Dialect) Name() string {
	return d.name
}

// Quote escapes an identifier so arbitrary request keys are safe as column names
func (d Dialect) Quote(ident string) string {
	return d.quoteChar + strings.ReplaceAll(ident, d.quoteChar, d.quoteChar+d.quoteChar) + d.quoteChar
}

// Placeholder returns the n-th (1-based) bind parameter marker
func (d Dialect) Placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}
