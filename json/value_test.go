package json

import (
	"sort"
	"testing"

	"github.com/freekieb7/jsondoc/test"
)

func TestValue_Accessors(t *testing.T) {
	test.AssertEqual(t, int64(2), NewDouble(2.9).Int())
	test.AssertEqual(t, 7.0, NewInt(7).Double())
	test.AssertEqual(t, "", NewInt(7).Text())
	test.AssertEqual(t, 0, NewBool(true).Len())
	test.AssertEqual(t, 5, NewString("hello").Len())
	test.AssertTrue(t, NewNull().IsNull(), "null is null")

	var v *Value
	test.AssertTrue(t, v.IsNull(), "nil reads as null")
	test.AssertEqual(t, KindNull, v.Kind())
	test.AssertEqual(t, 0, v.Len())
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindNull, "null"},
		{KindBool, "bool"},
		{KindInt, "int"},
		{KindDouble, "double"},
		{KindString, "string"},
		{KindArray, "array"},
		{KindObject, "object"},
		{Kind(99), "unknown"},
	}

	for _, tt := range tests {
		test.AssertEqual(t, tt.expected, tt.kind.String())
	}
}

func TestValue_AppendOwnership(t *testing.T) {
	arr := NewArray()
	child := NewInt(1)
	test.AssertNoError(t, arr.Append(child))
	test.AssertTrue(t, child.Parent() == arr, "child is owned by the array")

	other := NewArray()
	test.AssertErrorIs(t, other.Append(child), ErrArgument)
	test.AssertErrorIs(t, arr.Append(nil), ErrArgument)
	test.AssertErrorIs(t, NewObject().Append(NewInt(1)), ErrArgument)

	// a container cannot own one of its ancestors
	inner := NewArray()
	test.AssertNoError(t, arr.Append(inner))
	test.AssertErrorIs(t, inner.Append(arr), ErrArgument)
	test.AssertErrorIs(t, arr.Append(arr), ErrArgument)
}

func TestValue_ObjectMembers(t *testing.T) {
	obj := NewObject()
	test.AssertNoError(t, obj.Set("a", NewInt(1)))
	test.AssertNoError(t, obj.Set("b", NewInt(2)))
	test.AssertNoError(t, obj.Set("a", NewInt(3)))
	test.AssertEqual(t, 3, obj.Len())

	a, _ := obj.Get("a")
	test.AssertEqual(t, int64(3), a.Int())

	replacement := NewString("x")
	test.AssertNoError(t, obj.Put("a", replacement))
	test.AssertEqual(t, 2, obj.Len())
	a, _ = obj.Get("a")
	test.AssertTrue(t, a == replacement, "Put replaces every entry")

	keys := obj.Keys()
	sort.Strings(keys)
	test.AssertEqual(t, "a,b", keys[0]+","+keys[1])

	test.AssertEqual(t, 1, obj.Delete("b"))
	test.AssertEqual(t, 0, obj.Delete("b"))
	_, ok := obj.Get("b")
	test.AssertTrue(t, !ok, "b is gone")

	test.AssertErrorIs(t, NewArray().Set("a", NewInt(1)), ErrArgument)
	test.AssertErrorIs(t, obj.Set("self", obj), ErrArgument)
}

func TestValue_ReleaseIsRecursive(t *testing.T) {
	root := mustParse(t, `{"list":[{"deep":"text"}]}`)
	list, _ := root.Get("list")
	var deep *Value
	for elem := range list.Elements() {
		deep, _ = elem.Get("deep")
	}

	root.Release()
	test.AssertEqual(t, KindNull, root.Kind())
	test.AssertEqual(t, KindNull, list.Kind())
	test.AssertEqual(t, KindNull, deep.Kind())
	test.AssertTrue(t, deep.Parent() == nil, "released child is detached")

	// released values print as null and can be released again
	test.AssertEqual(t, "null", root.String())
	root.Release()
}

func TestValue_IteratorsOnWrongKind(t *testing.T) {
	n := 0
	for range NewInt(1).Elements() {
		n++
	}
	for range NewArray().Members() {
		n++
	}
	test.AssertEqual(t, 0, n)
}
