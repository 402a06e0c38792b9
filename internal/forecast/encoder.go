package forecast

// Encoding assigns stable integer codes to the distinct values of a
// categorical column, fixed by first-seen order in the corpus. One
// instance per column is built from the full corpus at startup and
// reused for training and every prediction; rebuilding an encoding from
// a different value set changes the codes and corrupts predictions.
type Encoding struct {
	codes  map[string]int
	values []string
}

// BuildEncoding assigns each distinct value the index of its first
// occurrence in values.
func BuildEncoding(values []string) *Encoding {
	e := &Encoding{codes: make(map[string]int)}
	for _, v := range values {
		if _, seen := e.codes[v]; !seen {
			e.codes[v] = len(e.values)
			e.values = append(e.values, v)
		}
	}
	return e
}

// Code returns the code assigned to v. The second return is false for
// values that were not present when the encoding was built; callers
// must treat that as an error rather than fabricate a code.
func (e *Encoding) Code(v string) (int, bool) {
	code, ok := e.codes[v]
	return code, ok
}

// Values returns the distinct values in first-seen order. The returned
// slice is a copy.
func (e *Encoding) Values() []string {
	out := make([]string, len(e.values))
	copy(out, e.values)
	return out
}

// Len returns the number of distinct values.
func (e *Encoding) Len() int {
	return len(e.values)
}
