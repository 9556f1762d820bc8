package json

import (
	"errors"
	"testing"

	"github.com/freekieb7/jsondoc/test"
)

func TestDocument_Parse(t *testing.T) {
	doc := NewDocument()
	test.AssertEqual(t, -1, doc.ErrorOffset())
	test.AssertTrue(t, doc.Root() == nil, "new document has no root")

	test.AssertNoError(t, doc.Parse([]byte(`{"a":1}`)))
	test.AssertEqual(t, -1, doc.ErrorOffset())

	a, ok := doc.Root().Get("a")
	test.AssertTrue(t, ok, "a member present")
	test.AssertEqual(t, int64(1), a.Int())

	out, err := doc.Print()
	test.AssertNoError(t, err)
	test.AssertEqual(t, `{"a":1}`, string(out))
}

func TestDocument_TopLevelRejection(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		offset int
	}{
		{"string", `"hello"`, 0},
		{"array", `[1,2,3]`, 0},
		{"number", `42`, 0},
		{"true", `true`, 0},
		{"null", `null`, 0},
		{"leading whitespace", "  \n[1]", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument()
			err := doc.Parse([]byte(tt.input))
			test.AssertErrorIs(t, err, ErrTopLevelType)
			test.AssertTrue(t, !errors.Is(err, ErrSyntax), "a top level type error is not a syntax error")
			test.AssertEqual(t, tt.offset, doc.ErrorOffset())
			test.AssertTrue(t, doc.Root() == nil, "rejected document holds no root")
		})
	}
}

func TestDocument_SyntaxError(t *testing.T) {
	doc := NewDocument()
	err := doc.Parse([]byte(`{"a":}`))
	test.AssertErrorIs(t, err, ErrSyntax)
	test.AssertEqual(t, 5, doc.ErrorOffset())
	test.AssertTrue(t, doc.Root() == nil, "failed parse holds no root")
}

func TestDocument_ReparseReplacesRoot(t *testing.T) {
	doc := NewDocument()
	test.AssertNoError(t, doc.Parse([]byte(`{"first":[1,2]}`)))
	first := doc.Root()
	list, _ := first.Get("first")

	test.AssertTrue(t, doc.Parse([]byte(`{`)) != nil, "truncated input fails")
	test.AssertEqual(t, 1, doc.ErrorOffset())
	test.AssertEqual(t, KindNull, first.Kind())
	test.AssertEqual(t, KindNull, list.Kind())

	test.AssertNoError(t, doc.Parse([]byte(`{"second":true}`)))
	test.AssertEqual(t, -1, doc.ErrorOffset())
	test.AssertEqual(t, `{"second":true}`, doc.Root().String())
}

func TestDocument_Options(t *testing.T) {
	doc := NewDocument(ParseOptions{MaxDepth: 1})
	err := doc.Parse([]byte(`{"a":{}}`))
	test.AssertErrorIs(t, err, ErrTooDeep)
	test.AssertEqual(t, 5, doc.ErrorOffset())
}

func TestDocument_SetRootAndTakeRoot(t *testing.T) {
	doc := NewDocument()
	test.AssertErrorIs(t, doc.SetRoot(NewArray()), ErrArgument)

	owned := NewObject()
	parent := NewArray()
	test.AssertNoError(t, parent.Append(owned))
	test.AssertErrorIs(t, doc.SetRoot(owned), ErrArgument)

	root := NewObject()
	test.AssertNoError(t, root.Set("k", NewString("v")))
	test.AssertNoError(t, doc.SetRoot(root))
	test.AssertTrue(t, doc.Root() == root, "root installed")

	taken := doc.TakeRoot()
	test.AssertTrue(t, taken == root, "TakeRoot hands back the root")
	test.AssertTrue(t, doc.Root() == nil, "document is empty after TakeRoot")

	// closing must not release a root the caller took
	doc.Close()
	test.AssertEqual(t, `{"k":"v"}`, taken.String())

	_, err := doc.Print()
	test.AssertErrorIs(t, err, ErrArgument)
}

func TestDocument_Close(t *testing.T) {
	doc := NewDocument()
	test.AssertNoError(t, doc.Parse([]byte(`{"a":"b"}`)))
	root := doc.Root()

	doc.Close()
	test.AssertTrue(t, doc.Root() == nil, "closed document has no root")
	test.AssertEqual(t, KindNull, root.Kind())

	// closing twice is harmless
	doc.Close()
}
