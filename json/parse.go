package json

import (
	"bytes"
	"math"

	"github.com/freekieb7/jsondoc/buffer"
)

const DefaultMaxDepth = 1000

var (
	literalNull  = []byte("null")
	literalFalse = []byte("false")
	literalTrue  = []byte("true")
)

type ParseOptions struct {
	// MaxDepth bounds array and object nesting. Zero means DefaultMaxDepth.
	MaxDepth int
	// MaxStringLength bounds the unescaped size of a single string. Zero
	// means no bound.
	MaxStringLength int
}

// parser is a recursive descent parser over a single input. Every
// production starts at pos and leaves pos after what it consumed.
type parser struct {
	input []byte
	pos   int
	depth int
	opts  ParseOptions
}

func newParser(input []byte, opts ParseOptions) *parser {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &parser{input: input, opts: opts}
}

// ParseValue parses any JSON value. Unlike Document.Parse it accepts
// non-object roots.
func ParseValue(text []byte, opts ...ParseOptions) (*Value, error) {
	var o ParseOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	p := newParser(text, o)
	p.skipWhitespace()
	return p.parseValue()
}

func (p *parser) fail(offset int, err error) error {
	return &ParseError{Offset: offset, Err: err}
}

// skipWhitespace treats every byte up to and including space as blank.
func (p *parser) skipWhitespace() {
	for p.pos < len(p.input) && p.input[p.pos] <= ' ' {
		p.pos++
	}
}

func (p *parser) at(c byte) bool {
	return p.pos < len(p.input) && p.input[p.pos] == c
}

func (p *parser) parseValue() (*Value, error) {
	rest := p.input[p.pos:]
	switch {
	case bytes.HasPrefix(rest, literalNull):
		p.pos += len(literalNull)
		return NewNull(), nil
	case bytes.HasPrefix(rest, literalFalse):
		p.pos += len(literalFalse)
		return NewBool(false), nil
	case bytes.HasPrefix(rest, literalTrue):
		p.pos += len(literalTrue)
		return NewBool(true), nil
	}

	if len(rest) == 0 {
		return nil, p.fail(p.pos, ErrSyntax)
	}

	switch c := rest[0]; {
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return newStringBuffer(s), nil
	case c == '-' || isDigit(c):
		return p.parseNumber()
	case c == '[':
		return p.parseArray()
	case c == '{':
		return p.parseObject()
	}

	return nil, p.fail(p.pos, ErrSyntax)
}

// parseString reads a quoted string starting at pos. The first pass sizes
// the result, the second fills a buffer of exactly that size.
func (p *parser) parseString() (*buffer.Buffer, error) {
	start := p.pos + 1
	end := start
	size := 0
	for end < len(p.input) && p.input[end] != '"' {
		if p.input[end] == '\\' {
			end++
		}
		end++
		size++
	}
	if end >= len(p.input) {
		return nil, p.fail(len(p.input), ErrUnterminated)
	}
	if p.opts.MaxStringLength > 0 && size > p.opts.MaxStringLength {
		return nil, p.fail(p.pos, ErrAllocation)
	}

	s := buffer.NewExactSize(size)
	out := s.Bytes()
	n := 0
	for i := start; i < end; i++ {
		c := p.input[i]
		if c == '\\' {
			i++
			c = unescape(p.input[i])
		}
		out[n] = c
		n++
	}

	p.pos = end + 1
	return s, nil
}

// unescape maps the byte following a backslash. Unknown escapes, including
// \u, yield the byte itself.
func unescape(c byte) byte {
	switch c {
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	}
	return c
}

// parseNumber accumulates digits by hand. The mantissa is kept as a float
// with a decimal scale for the fraction, the integer form is accumulated
// separately so large integers keep full precision.
func (p *parser) parseNumber() (*Value, error) {
	in := p.input
	i := p.pos

	negative := false
	if in[i] == '-' {
		negative = true
		i++
	}

	var (
		mantissa float64
		integer  uint64
		overflow bool
		digits   int
		scale    int
		exponent int
		isDouble bool
	)

	// a single leading zero is consumed on its own
	if i < len(in) && in[i] == '0' {
		i++
		digits++
	} else if i < len(in) && in[i] >= '1' && in[i] <= '9' {
		for i < len(in) && isDigit(in[i]) {
			d := uint64(in[i] - '0')
			mantissa = mantissa*10 + float64(d)
			if integer > (math.MaxUint64-d)/10 {
				overflow = true
			} else {
				integer = integer*10 + d
			}
			i++
			digits++
		}
	}
	if digits == 0 {
		return nil, p.fail(i, ErrSyntax)
	}

	if i+1 < len(in) && in[i] == '.' && isDigit(in[i+1]) {
		isDouble = true
		i++
		for i < len(in) && isDigit(in[i]) {
			mantissa = mantissa*10 + float64(in[i]-'0')
			scale--
			i++
		}
	}

	if i < len(in) && (in[i] == 'e' || in[i] == 'E') {
		isDouble = true
		i++
		sign := 1
		if i < len(in) && in[i] == '+' {
			i++
		} else if i < len(in) && in[i] == '-' {
			sign = -1
			i++
		}
		for i < len(in) && isDigit(in[i]) {
			if exponent < 1<<20 {
				exponent = exponent*10 + int(in[i]-'0')
			}
			i++
		}
		scale += sign * exponent
	}

	p.pos = i

	if !isDouble {
		switch {
		case overflow:
		case negative && integer <= 1<<63:
			return NewInt(-int64(integer)), nil
		case !negative && integer <= math.MaxInt64:
			return NewInt(int64(integer)), nil
		}
	}

	f := scale10(mantissa, scale)
	if negative {
		f = -f
	}
	return NewDouble(f), nil
}

// scale10 returns m * 10^e, dividing for negative exponents so exact
// mantissas stay correctly rounded.
func scale10(m float64, e int) float64 {
	if m == 0 {
		return 0
	}
	if e >= 0 {
		return m * math.Pow10(e)
	}
	for e < -308 {
		m /= 1e308
		e += 308
	}
	return m / math.Pow10(-e)
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > p.opts.MaxDepth {
		return p.fail(p.pos, ErrTooDeep)
	}
	return nil
}

func (p *parser) parseArray() (*Value, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	arr := NewArray()
	p.pos++
	p.skipWhitespace()
	if p.at(']') {
		p.pos++
		return arr, nil
	}

	for {
		p.skipWhitespace()
		elem, err := p.parseValue()
		if err != nil {
			arr.Release()
			return nil, err
		}
		arr.arr.PushBack(elem)
		elem.parent = arr

		p.skipWhitespace()
		if !p.at(',') {
			break
		}
		p.pos++
	}

	if !p.at(']') {
		arr.Release()
		return nil, p.fail(p.pos, ErrSyntax)
	}
	p.pos++
	return arr, nil
}

func (p *parser) parseObject() (*Value, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	obj := NewObject()
	p.pos++
	p.skipWhitespace()
	if p.at('}') {
		p.pos++
		return obj, nil
	}

	for {
		p.skipWhitespace()
		if !p.at('"') {
			obj.Release()
			return nil, p.fail(p.pos, ErrSyntax)
		}
		name, err := p.parseString()
		if err != nil {
			obj.Release()
			return nil, err
		}

		p.skipWhitespace()
		if !p.at(':') {
			obj.Release()
			return nil, p.fail(p.pos, ErrSyntax)
		}
		p.pos++

		p.skipWhitespace()
		member, err := p.parseValue()
		if err != nil {
			obj.Release()
			return nil, err
		}
		obj.obj.Insert(name.String(), member)
		member.parent = obj

		p.skipWhitespace()
		if !p.at(',') {
			break
		}
		p.pos++
	}

	if !p.at('}') {
		obj.Release()
		return nil, p.fail(p.pos, ErrSyntax)
	}
	p.pos++
	return obj, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
