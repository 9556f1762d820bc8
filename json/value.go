package json

import (
	"iter"

	"github.com/freekieb7/jsondoc/buffer"
	"github.com/freekieb7/jsondoc/hashtable"
	"github.com/freekieb7/jsondoc/sequence"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindDouble
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a single JSON node. Only the payload matching its kind is set.
//
// Arrays and objects own their children: a child has exactly one parent and
// is released together with it. parent is a navigation link only.
type Value struct {
	kind Kind

	b   bool
	i   int64
	f   float64
	s   *buffer.Buffer
	arr *sequence.List[*Value]
	obj *hashtable.Table[*Value]

	parent *Value
}

func NewNull() *Value {
	return &Value{kind: KindNull}
}

func NewBool(b bool) *Value {
	return &Value{kind: KindBool, b: b}
}

func NewInt(i int64) *Value {
	return &Value{kind: KindInt, i: i}
}

func NewDouble(f float64) *Value {
	return &Value{kind: KindDouble, f: f}
}

func NewString(s string) *Value {
	return newStringBuffer(buffer.NewExact([]byte(s)))
}

func newStringBuffer(b *buffer.Buffer) *Value {
	return &Value{kind: KindString, s: b}
}

func NewArray() *Value {
	return &Value{kind: KindArray, arr: sequence.New[*Value]()}
}

func NewObject() *Value {
	return &Value{kind: KindObject, obj: hashtable.New[*Value]()}
}

func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

func (v *Value) IsNull() bool {
	return v == nil || v.kind == KindNull
}

func (v *Value) IsObject() bool {
	return v != nil && v.kind == KindObject
}

func (v *Value) IsArray() bool {
	return v != nil && v.kind == KindArray
}

// Bool returns the boolean payload, false for any other kind.
func (v *Value) Bool() bool {
	return v != nil && v.kind == KindBool && v.b
}

// Int returns the integer payload. Doubles are truncated.
func (v *Value) Int() int64 {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindInt:
		return v.i
	case KindDouble:
		return int64(v.f)
	}
	return 0
}

// Double returns the floating payload. Integers are converted.
func (v *Value) Double() float64 {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindDouble:
		return v.f
	case KindInt:
		return float64(v.i)
	}
	return 0
}

// Text returns the unescaped content of a string value.
func (v *Value) Text() string {
	if v == nil || v.kind != KindString {
		return ""
	}
	return v.s.String()
}

// Len is the byte length of a string, or the number of elements or members.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindString:
		return v.s.Len()
	case KindArray:
		return v.arr.Len()
	case KindObject:
		return v.obj.Len()
	}
	return 0
}

// Parent returns the container owning v, or nil.
func (v *Value) Parent() *Value {
	if v == nil {
		return nil
	}
	return v.parent
}

// adoptable reports whether child may be placed into v.
func (v *Value) adoptable(child *Value) bool {
	if child == nil || child.parent != nil {
		return false
	}
	for p := v; p != nil; p = p.parent {
		if p == child {
			return false
		}
	}
	return true
}

// Append moves child to the end of an array. The child must not belong to
// another container.
func (v *Value) Append(child *Value) error {
	if !v.IsArray() || !v.adoptable(child) {
		return ErrArgument
	}
	v.arr.PushBack(child)
	child.parent = v
	return nil
}

// Elements yields array elements in insertion order.
func (v *Value) Elements() iter.Seq[*Value] {
	if !v.IsArray() {
		return func(func(*Value) bool) {}
	}
	return v.arr.All()
}

// ElementsBackward yields array elements last to first.
func (v *Value) ElementsBackward() iter.Seq[*Value] {
	if !v.IsArray() {
		return func(func(*Value) bool) {}
	}
	return v.arr.Backward()
}

// Set adds a member to an object. An existing member with the same key is
// kept; Get returns the newest one.
func (v *Value) Set(key string, child *Value) error {
	if !v.IsObject() || !v.adoptable(child) {
		return ErrArgument
	}
	v.obj.Insert(key, child)
	child.parent = v
	return nil
}

// Put replaces every member named key with child.
func (v *Value) Put(key string, child *Value) error {
	if !v.IsObject() || !v.adoptable(child) {
		return ErrArgument
	}
	v.Delete(key)
	return v.Set(key, child)
}

// Get returns the newest member stored under key.
func (v *Value) Get(key string) (*Value, bool) {
	if !v.IsObject() {
		return nil, false
	}
	return v.obj.Get(key)
}

// Delete removes and releases every member named key. It returns how many
// were removed.
func (v *Value) Delete(key string) int {
	if !v.IsObject() {
		return 0
	}
	removed := v.obj.DeleteKey(key)
	for _, child := range removed {
		child.parent = nil
		child.Release()
	}
	return len(removed)
}

// Members yields object members in table order, which is not the order they
// were inserted in.
func (v *Value) Members() iter.Seq2[string, *Value] {
	return func(yield func(string, *Value) bool) {
		if !v.IsObject() {
			return
		}
		for e := range v.obj.All() {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

func (v *Value) Keys() []string {
	keys := make([]string, 0, v.Len())
	for key := range v.Members() {
		keys = append(keys, key)
	}
	return keys
}

// Release drops the payload of v and of every value it owns. v reads as
// null afterwards.
func (v *Value) Release() {
	if v == nil {
		return
	}
	switch v.kind {
	case KindString:
		v.s.Release()
		v.s = nil
	case KindArray:
		for n := range v.arr.Nodes() {
			child := v.arr.Remove(n)
			child.parent = nil
			child.Release()
		}
		v.arr = nil
	case KindObject:
		for _, child := range v.obj.Drain() {
			child.parent = nil
			child.Release()
		}
		v.obj = nil
	}
	v.kind = KindNull
	v.b, v.i, v.f = false, 0, 0
}

// String prints v as compact JSON. It returns an empty string when v cannot
// be printed.
func (v *Value) String() string {
	out, err := Print(v)
	if err != nil {
		return ""
	}
	return string(out)
}
