package transform

import "fmt"

// TypeConversionError - значение, которое нельзя привести к объявленному типу
type TypeConversionError struct {
	Column string
	Row    int
	Value  string
	Target string
}

func (e *TypeConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q in column %s (row %d) to %s", e.Value, e.Column, e.Row, e.Target)
}

// ImputationError - колонка, для которой нельзя определить значение заполнения
type ImputationError struct {
	Column   string
	Strategy string
	Reason   string
}

func (e *ImputationError) Error() string {
	return fmt.Sprintf("%s imputation of column %s failed: %s", e.Strategy, e.Column, e.Reason)
}
