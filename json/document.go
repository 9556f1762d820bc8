package json

import "errors"

// Document owns a parsed root object and remembers where the last parse
// failed.
type Document struct {
	root      *Value
	errOffset int
	opts      ParseOptions
}

func NewDocument(opts ...ParseOptions) *Document {
	d := &Document{errOffset: -1}
	if len(opts) > 0 {
		d.opts = opts[0]
	}
	return d
}

// Parse replaces the document content with text. The root must be an
// object; any other value fails with ErrTopLevelType even when it is valid
// JSON. On failure the document holds no root and ErrorOffset reports where
// parsing stopped.
func (d *Document) Parse(text []byte) error {
	d.Close()

	p := newParser(text, d.opts)
	p.skipWhitespace()
	start := p.pos

	root, err := p.parseValue()
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			d.errOffset = perr.Offset
		}
		return err
	}

	if root.kind != KindObject {
		root.Release()
		d.errOffset = start
		return &ParseError{Offset: start, Err: ErrTopLevelType}
	}

	d.root = root
	return nil
}

// Root returns the root object, or nil when nothing was parsed.
func (d *Document) Root() *Value {
	return d.root
}

// SetRoot hands an unowned object to the document, releasing the previous
// root.
func (d *Document) SetRoot(v *Value) error {
	if !v.IsObject() || v.parent != nil {
		return ErrArgument
	}
	if d.root != nil && d.root != v {
		d.root.Release()
	}
	d.root = v
	d.errOffset = -1
	return nil
}

// TakeRoot detaches the root and gives it to the caller.
func (d *Document) TakeRoot() *Value {
	root := d.root
	d.root = nil
	return root
}

// ErrorOffset is the byte offset of the last parse failure, or -1.
func (d *Document) ErrorOffset() int {
	return d.errOffset
}

// Print renders the root object.
func (d *Document) Print() ([]byte, error) {
	if d.root == nil {
		return nil, ErrArgument
	}
	return Print(d.root)
}

// Close releases the root and clears the failure offset.
func (d *Document) Close() {
	if d.root != nil {
		d.root.Release()
		d.root = nil
	}
	d.errOffset = -1
}
