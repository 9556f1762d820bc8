package json

import (
	"math"
	"strconv"
	"unsafe"

	"github.com/freekieb7/jsondoc/buffer"
)

// initialPrintSize is the starting capacity of the output buffer.
const initialPrintSize = 4

type PrintOptions struct {
	// MaxSize bounds the output length. Zero means no bound.
	MaxSize int
}

// Print renders v as compact JSON. The returned slice is owned by the
// caller.
func Print(v *Value) ([]byte, error) {
	return PrintWith(v, PrintOptions{})
}

// PrintWith is Print with options. Output that would exceed MaxSize fails
// with ErrAllocation and nothing is returned.
func PrintWith(v *Value, opts PrintOptions) ([]byte, error) {
	if v == nil {
		return nil, ErrArgument
	}

	out := buffer.New(initialPrintSize)
	out.SetLimit(opts.MaxSize)
	if err := printValue(v, out); err != nil {
		out.Release()
		return nil, err
	}
	return out.Bytes(), nil
}

func printValue(v *Value, w writer) error {
	switch v.kind {
	case KindNull:
		return w.WriteString("null")
	case KindBool:
		if v.b {
			return w.WriteString("true")
		}
		return w.WriteString("false")
	case KindInt:
		var scratch [24]byte
		return w.WriteBytes(strconv.AppendInt(scratch[:0], v.i, 10))
	case KindDouble:
		var scratch [32]byte
		return w.WriteBytes(appendDouble(scratch[:0], v.f))
	case KindString:
		return printString(v.s.Bytes(), w)
	case KindArray:
		return printArray(v, w)
	case KindObject:
		return printObject(v, w)
	}
	return ErrArgument
}

func printString(data []byte, w writer) error {
	if err := w.WriteByte('"'); err != nil {
		return err
	}
	if err := writeEscaped(data, w); err != nil {
		return err
	}
	return w.WriteByte('"')
}

func printArray(v *Value, w writer) error {
	if err := w.WriteByte('['); err != nil {
		return err
	}
	n := 0
	for elem := range v.arr.All() {
		if n > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := printValue(elem, w); err != nil {
			return err
		}
		n++
	}
	return w.WriteByte(']')
}

func printObject(v *Value, w writer) error {
	if err := w.WriteByte('{'); err != nil {
		return err
	}
	n := 0
	for e := range v.obj.All() {
		if n > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := printString(stringBytes(e.Key), w); err != nil {
			return err
		}
		if err := w.WriteByte(':'); err != nil {
			return err
		}
		if err := printValue(e.Value, w); err != nil {
			return err
		}
		n++
	}
	return w.WriteByte('}')
}

// appendDouble formats f like C's %e outside [1e-6, 1e9] and like %f
// otherwise, with trailing zeros trimmed down to a single fractional digit.
// NaN and the infinities have no JSON form and print as null.
func appendDouble(dst []byte, f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(dst, "null"...)
	}
	if a := math.Abs(f); a < 1e-6 || a > 1e9 {
		return strconv.AppendFloat(dst, f, 'e', 6, 64)
	}

	start := len(dst)
	dst = strconv.AppendFloat(dst, f, 'f', 6, 64)
	end := len(dst)
	for end-start > 2 && dst[end-1] == '0' && dst[end-2] != '.' {
		end--
	}
	return dst[:end]
}

// stringBytes views s as bytes without copying. The result must not be
// written to.
func stringBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
