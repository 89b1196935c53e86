package index

import "strconv"

// IDAfter returns the first valid id following id. An empty id starts the
// scan from the beginning of the index.
func (x *Index[E]) IDAfter(id string) (string, bool) {
	start := 0
	if id != "" {
		value, err := x.valueOf(id)
		if err != nil {
			return "", false
		}
		start = value
	}
	value, ok := x.IDValueAfter(start)
	if !ok {
		return "", false
	}
	return x.prefix + strconv.Itoa(value), true
}

// IDBefore returns the first valid id preceding id. An empty id has no
// predecessor.
func (x *Index[E]) IDBefore(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	value, err := x.valueOf(id)
	if err != nil {
		return "", false
	}
	before, ok := x.IDValueBefore(value)
	if !ok {
		return "", false
	}
	return x.prefix + strconv.Itoa(before), true
}

// IDValueAfter returns the first valid id value strictly greater than value
// and not greater than the counter. Zero starts from the beginning.
func (x *Index[E]) IDValueAfter(value int) (int, bool) {
	if value < 0 {
		value = 0
	}
	last := x.LastIDValue()
	for i := value + 1; i <= last; i++ {
		if x.isValidValue(i) {
			return i, true
		}
	}
	return 0, false
}

// IDValueBefore returns the first valid id value strictly lower than value.
// Zero has no predecessor.
func (x *Index[E]) IDValueBefore(value int) (int, bool) {
	if value <= 0 {
		return 0, false
	}
	for i := value - 1; i > 0; i-- {
		if x.isValidValue(i) {
			return i, true
		}
	}
	return 0, false
}

func (x *Index[E]) isValidValue(value int) bool {
	e, ok := x.getValue(value)
	if !ok {
		return false
	}
	return x.valid(e)
}
