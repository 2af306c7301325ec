package models

// Tri - трехзначная логика: сравнение с пропуском дает Unknown
type Tri int8

const (
	Unknown Tri = iota
	False
	True
)

// TriOf преобразует обычный bool
func TriOf(b bool) Tri {
	if b {
		return True
	}
	return False
}

// Known сообщает, равно ли значение True или False
func (t Tri) Known() bool {
	return t != Unknown
}

// Weight возвращает w для True, 0 для False. Для Unknown ok == false.
func (t Tri) Weight(w int64) (int64, bool) {
	switch t {
	case True:
		return w, true
	case False:
		return 0, true
	default:
		return 0, false
	}
}

// Compare применяет pred к числовому значению v; пропуск и текст дают Unknown
func Compare(v Value, pred func(float64) bool) Tri {
	n, ok := v.Number()
	if !ok {
		return Unknown
	}
	return TriOf(pred(n))
}

// Equals сравнивает текстовое значение; пропуск дает Unknown
func Equals(v Value, s string) Tri {
	if v.Null {
		return Unknown
	}
	return TriOf(v.Text() == s)
}
