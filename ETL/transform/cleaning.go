package transform

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/LilVoxy/hr_etl/ETL/models"
)

// ConvertBinaryColumns переводит текстовые флаги (например Yes/No) в целые числа.
// Пропуски остаются пропусками, значения из целевого домена сохраняются, любое другое
// значение становится пропуском и учитывается в возвращаемом счетчике.
func ConvertBinaryColumns(f *models.Frame, columns []string, mapping map[string]int64) (int, error) {
	targets := make(map[int64]bool, len(mapping))
	for _, v := range mapping {
		targets[v] = true
	}

	unmapped := 0
	for _, name := range columns {
		col, err := f.MustColumn(name)
		if err != nil {
			return unmapped, err
		}

		values := make([]models.Value, col.Len())
		for i, v := range col.Values {
			values[i] = models.Null(models.KindInt)
			if v.Null {
				continue
			}
			if n, ok := v.Number(); ok && n == float64(int64(n)) && targets[int64(n)] {
				values[i] = models.Int(int64(n))
				continue
			}
			if mapped, ok := mapping[v.Text()]; ok {
				values[i] = models.Int(mapped)
				continue
			}
			unmapped++
		}

		if err := f.SetColumn(models.NewColumn(name, models.KindInt, values)); err != nil {
			return unmapped, err
		}
	}
	return unmapped, nil
}

// RemoveDuplicates удаляет строки, совпадающие с более ранней по всем колонкам, и
// возвращает их число. Остается первое вхождение.
func RemoveDuplicates(f *models.Frame) (int, error) {
	seen := make(map[string]bool, f.Len())
	keep := make([]bool, f.Len())
	removed := 0

	columns := f.Columns()
	var key strings.Builder
	for i := 0; i < f.Len(); i++ {
		key.Reset()
		for _, c := range columns {
			key.WriteString(c.Values[i].Key())
			key.WriteByte(0x1f)
		}
		k := key.String()
		if seen[k] {
			removed++
			continue
		}
		seen[k] = true
		keep[i] = true
	}

	if removed == 0 {
		return 0, nil
	}
	return removed, f.Filter(keep)
}

// DropColumns удаляет перечисленные колонки, отсутствующие игнорируются
func DropColumns(f *models.Frame, columns []string) []string {
	return f.Drop(columns...)
}

// StandardizeColumns приводит titleColumns к Title Case и обрезает пробелы, затем
// применяет замены по колонкам. Ключи замен пишутся уже в Title Case.
func StandardizeColumns(f *models.Frame, titleColumns []string, replacements map[string]map[string]string) error {
	caser := cases.Title(language.Und)
	for _, name := range titleColumns {
		col, err := textColumn(f, name)
		if err != nil {
			return err
		}
		for i, v := range col.Values {
			if v.Null {
				continue
			}
			col.Values[i] = models.String(strings.TrimSpace(caser.String(v.Str)))
		}
	}

	names := make([]string, 0, len(replacements))
	for name := range replacements {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		mapping := replacements[name]
		col, err := textColumn(f, name)
		if err != nil {
			return err
		}
		for i, v := range col.Values {
			if v.Null {
				continue
			}
			if repl, ok := mapping[v.Str]; ok {
				col.Values[i] = models.String(repl)
			}
		}
	}
	return nil
}

// textColumn возвращает текстовую колонку. Колонка без значений становится текстовой,
// ее выведенный тип ничего не значит.
func textColumn(f *models.Frame, name string) (*models.Column, error) {
	col, err := f.MustColumn(name)
	if err != nil {
		return nil, err
	}
	if col.Kind == models.KindString {
		return col, nil
	}
	if col.NullCount() != col.Len() {
		return nil, fmt.Errorf("column %s holds %s values, expected text", name, col.Kind)
	}

	values := make([]models.Value, col.Len())
	for i := range values {
		values[i] = models.Null(models.KindString)
	}
	text := models.NewColumn(name, models.KindString, values)
	if err := f.SetColumn(text); err != nil {
		return nil, err
	}
	return text, nil
}
