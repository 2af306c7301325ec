package load

import (
	"fmt"
	"strings"

	"github.com/LilVoxy/hr_etl/ETL/models"
)

// Dialect описывает различия SQL между поддерживаемыми БД
type Dialect interface {
	Name() string
	Quote(ident string) string
	// Placeholder возвращает параметр для n-го аргумента, начиная с 1
	Placeholder(n int) string
	ColumnType(kind models.Kind, key bool) string
	// TransactionalDDL сообщает, можно ли откатить DROP/CREATE
	TransactionalDDL() bool
}

// DialectFor возвращает диалект по имени драйвера database/sql
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "mysql":
		return MySQLDialect{}, nil
	case "postgres":
		return PostgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported sink driver %q", driver)
	}
}

type MySQLDialect struct{}

func (MySQLDialect) Name() string { return "mysql" }

func (MySQLDialect) Quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func (MySQLDialect) Placeholder(int) string { return "?" }

func (MySQLDialect) ColumnType(kind models.Kind, key bool) string {
	switch kind {
	case models.KindInt:
		return "BIGINT"
	case models.KindFloat:
		return "DOUBLE"
	}
	// TEXT не может быть первичным ключом без длины префикса
	if key {
		return "VARCHAR(255)"
	}
	return "TEXT"
}

func (MySQLDialect) TransactionalDDL() bool { return false }

type PostgresDialect struct{}

func (PostgresDialect) Name() string { return "postgres" }

func (PostgresDialect) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (PostgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (PostgresDialect) ColumnType(kind models.Kind, _ bool) string {
	switch kind {
	case models.KindInt:
		return "BIGINT"
	case models.KindFloat:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

func (PostgresDialect) TransactionalDDL() bool { return true }

func dropTableSQL(d Dialect, name string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(name)
}

// createTableSQL объявляет по колонке на каждую колонку фрейма; ключ - первичный ключ
func createTableSQL(d Dialect, name string, f *models.Frame, key string) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(d.Quote(name))
	b.WriteString(" (")
	for i, c := range f.Columns() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.Quote(c.Name))
		b.WriteByte(' ')
		b.WriteString(d.ColumnType(c.Kind, c.Name == key))
		if c.Name == key {
			b.WriteString(" NOT NULL")
		}
	}
	b.WriteString(", PRIMARY KEY (")
	b.WriteString(d.Quote(key))
	b.WriteString("))")
	return b.String()
}

// insertSQL строит INSERT для строк [start, end) фрейма f и его аргументы
func insertSQL(d Dialect, name string, f *models.Frame, start, end int) (string, []any) {
	columns := f.Columns()

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(d.Quote(name))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(d.Quote(c.Name))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, (end-start)*len(columns))
	for row := start; row < end; row++ {
		if row > start {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for i, c := range columns {
			if i > 0 {
				b.WriteString(", ")
			}
			args = append(args, c.Values[row].SQLValue())
			b.WriteString(d.Placeholder(len(args)))
		}
		b.WriteByte(')')
	}
	return b.String(), args
}
