package models

import (
	"math"
	"strconv"
)

// Kind - скалярный тип колонки
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "string"
	}
}

// Value - ячейка, допускающая пропуск. Значимо только поле, соответствующее Kind.
type Value struct {
	Kind  Kind
	Null  bool
	Int   int64
	Float float64
	Str   string
}

// Null возвращает пропуск заданного типа
func Null(kind Kind) Value {
	return Value{Kind: kind, Null: true}
}

// Int возвращает целое значение
func Int(v int64) Value {
	return Value{Kind: KindInt, Int: v}
}

// Float возвращает дробное значение. NaN считается пропуском.
func Float(v float64) Value {
	if math.IsNaN(v) {
		return Null(KindFloat)
	}
	return Value{Kind: KindFloat, Float: v}
}

// String возвращает текстовое значение
func String(v string) Value {
	return Value{Kind: KindString, Str: v}
}

// Number возвращает значение как число. ok == false для пропусков и текста.
func (v Value) Number() (float64, bool) {
	if v.Null {
		return 0, false
	}
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// Text возвращает значение в виде для CSV. Пропуск - "".
func (v Value) Text() string {
	if v.Null {
		return ""
	}
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	default:
		return v.Str
	}
}

// Key - представление с учетом типа для сравнения (дубликаты, подсчет моды).
func (v Value) Key() string {
	if v.Null {
		return "\x00null"
	}
	return strconv.Itoa(int(v.Kind)) + "\x00" + v.Text()
}

// SQLValue возвращает значение в виде, понятном драйверам database/sql
func (v Value) SQLValue() any {
	if v.Null {
		return nil
	}
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	default:
		return v.Str
	}
}

// Less сравнивает два значения одного типа (по числу или лексикографически)
func (v Value) Less(other Value) bool {
	if v.Kind == KindString || other.Kind == KindString {
		return v.Text() < other.Text()
	}
	a, _ := v.Number()
	b, _ := other.Number()
	return a < b
}
