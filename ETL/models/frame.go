package models

import (
	"errors"
	"fmt"
)

var (
	ErrLengthMismatch = errors.New("column length does not match frame")
	ErrColumnExists   = errors.New("column already exists")
	ErrColumnNotFound = errors.New("column not found")
	ErrKindMismatch   = errors.New("value kind does not match column kind")
)

// Column - именованная последовательность ячеек одного типа
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// NewColumn создает колонку. Значения - пропуски или значения типа kind.
func NewColumn(name string, kind Kind, values []Value) *Column {
	return &Column{Name: name, Kind: kind, Values: values}
}

// Len возвращает число ячеек
func (c *Column) Len() int {
	return len(c.Values)
}

// NullCount возвращает число пропусков
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v.Null {
			n++
		}
	}
	return n
}

// Numeric сообщает, числовая ли колонка
func (c *Column) Numeric() bool {
	return c.Kind == KindInt || c.Kind == KindFloat
}

func (c *Column) validate() error {
	for i, v := range c.Values {
		if !v.Null && v.Kind != c.Kind {
			return fmt.Errorf("%w: column %q row %d holds %s, expected %s", ErrKindMismatch, c.Name, i, v.Kind, c.Kind)
		}
	}
	return nil
}

// Frame - упорядоченный набор колонок одинаковой длины. Строки определяются позицией.
type Frame struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewFrame создает пустой фрейм с заданным числом строк
func NewFrame(rows int) *Frame {
	return &Frame{index: make(map[string]int), rows: rows}
}

// FrameFromColumns строит фрейм, число строк берется из первой колонки
func FrameFromColumns(columns ...*Column) (*Frame, error) {
	rows := 0
	if len(columns) > 0 {
		rows = columns[0].Len()
	}
	f := NewFrame(rows)
	for _, c := range columns {
		if err := f.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Len возвращает число строк
func (f *Frame) Len() int {
	return f.rows
}

// Width возвращает число колонок
func (f *Frame) Width() int {
	return len(f.columns)
}

// Names возвращает имена колонок по порядку
func (f *Frame) Names() []string {
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.Name
	}
	return names
}

// Columns возвращает колонки по порядку. Срез копируется, колонки - нет.
func (f *Frame) Columns() []*Column {
	out := make([]*Column, len(f.columns))
	copy(out, f.columns)
	return out
}

// Has сообщает, есть ли колонка во фрейме
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column ищет колонку по имени
func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.columns[i], true
}

// MustColumn ищет колонку и возвращает ErrColumnNotFound, если ее нет
func (f *Frame) MustColumn(name string) (*Column, error) {
	c, ok := f.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	return c, nil
}

// AddColumn добавляет новую колонку
func (f *Frame) AddColumn(c *Column) error {
	if _, ok := f.index[c.Name]; ok {
		return fmt.Errorf("%w: %s", ErrColumnExists, c.Name)
	}
	if c.Len() != f.rows {
		return fmt.Errorf("%w: %s has %d rows, frame has %d", ErrLengthMismatch, c.Name, c.Len(), f.rows)
	}
	if err := c.validate(); err != nil {
		return err
	}
	f.index[c.Name] = len(f.columns)
	f.columns = append(f.columns, c)
	return nil
}

// SetColumn заменяет колонку на месте или добавляет, если ее нет
func (f *Frame) SetColumn(c *Column) error {
	i, ok := f.index[c.Name]
	if !ok {
		return f.AddColumn(c)
	}
	if c.Len() != f.rows {
		return fmt.Errorf("%w: %s has %d rows, frame has %d", ErrLengthMismatch, c.Name, c.Len(), f.rows)
	}
	if err := c.validate(); err != nil {
		return err
	}
	f.columns[i] = c
	return nil
}

// Drop удаляет существующие колонки из списка и возвращает удаленные имена
func (f *Frame) Drop(names ...string) []string {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if f.Has(n) {
			drop[n] = true
		}
	}
	if len(drop) == 0 {
		return nil
	}

	var removed []string
	kept := f.columns[:0]
	for _, c := range f.columns {
		if drop[c.Name] {
			removed = append(removed, c.Name)
			continue
		}
		kept = append(kept, c)
	}
	f.columns = kept
	f.reindex()
	return removed
}

// Filter оставляет строки с флагом true одинаково во всех колонках
func (f *Frame) Filter(keep []bool) error {
	if len(keep) != f.rows {
		return fmt.Errorf("%w: filter mask has %d entries, frame has %d rows", ErrLengthMismatch, len(keep), f.rows)
	}
	rows := 0
	for _, k := range keep {
		if k {
			rows++
		}
	}
	for _, c := range f.columns {
		values := make([]Value, 0, rows)
		for i, v := range c.Values {
			if keep[i] {
				values = append(values, v)
			}
		}
		c.Values = values
	}
	f.rows = rows
	return nil
}

// Row возвращает ячейки строки i в порядке колонок
func (f *Frame) Row(i int) []Value {
	row := make([]Value, len(f.columns))
	for j, c := range f.columns {
		row[j] = c.Values[i]
	}
	return row
}

// Project возвращает новый фрейм с копиями указанных колонок в заданном порядке
func (f *Frame) Project(names ...string) (*Frame, error) {
	out := NewFrame(f.rows)
	for _, n := range names {
		c, err := f.MustColumn(n)
		if err != nil {
			return nil, err
		}
		values := make([]Value, len(c.Values))
		copy(values, c.Values)
		if err := out.AddColumn(NewColumn(c.Name, c.Kind, values)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (f *Frame) reindex() {
	f.index = make(map[string]int, len(f.columns))
	for i, c := range f.columns {
		f.index[c.Name] = i
	}
}
