package json

// writer is the sink the printer renders into.
type writer interface {
	WriteByte(byte) error
	WriteString(string) error
	WriteBytes([]byte) error
}

// scanForEscapeChars returns the index of the first byte that has a short
// escape form, or len(data).
func scanForEscapeChars(data []byte) int {
	for i, b := range data {
		if escapes[b] {
			return i
		}
	}
	return len(data)
}

var escapes = [256]bool{'"': true, '\\': true, '\b': true, '\f': true, '\n': true, '\r': true, '\t': true}

// writeEscaped writes data as the body of a JSON string. data is only
// read; the escaped form goes straight to w. Control bytes without a short
// form are written raw.
func writeEscaped(data []byte, w writer) error {
	start := 0
	for start < len(data) {
		remaining := data[start:]
		pos := scanForEscapeChars(remaining)

		if pos == len(remaining) {
			return w.WriteBytes(remaining)
		}

		if pos > 0 {
			if err := w.WriteBytes(remaining[:pos]); err != nil {
				return err
			}
		}

		var err error
		switch b := remaining[pos]; b {
		case '"':
			err = w.WriteString(`\"`)
		case '\\':
			err = w.WriteString(`\\`)
		case '\b':
			err = w.WriteString(`\b`)
		case '\f':
			err = w.WriteString(`\f`)
		case '\n':
			err = w.WriteString(`\n`)
		case '\r':
			err = w.WriteString(`\r`)
		case '\t':
			err = w.WriteString(`\t`)
		}
		if err != nil {
			return err
		}

		start += pos + 1
	}

	return nil
}
