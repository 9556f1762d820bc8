package json

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/freekieb7/jsondoc/test"
)

// toAny converts a value tree into plain Go values so trees can be compared
// without depending on member order.
func toAny(v *Value) any {
	switch v.Kind() {
	case KindBool:
		return v.Bool()
	case KindInt:
		return v.Int()
	case KindDouble:
		return v.Double()
	case KindString:
		return v.Text()
	case KindArray:
		out := []any{}
		for elem := range v.Elements() {
			out = append(out, toAny(elem))
		}
		return out
	case KindObject:
		out := map[string]any{}
		for key, member := range v.Members() {
			if _, ok := out[key]; !ok {
				out[key] = toAny(member)
			}
		}
		return out
	}
	return nil
}

func mustParse(t *testing.T, text string) *Value {
	t.Helper()
	v, err := ParseValue([]byte(text))
	if err != nil {
		t.Fatalf("ParseValue(%q) error = %v", text, err)
	}
	return v
}

func TestParseValue_Literals(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
	}{
		{"null", KindNull},
		{"true", KindBool},
		{"false", KindBool},
		{`""`, KindString},
		{"[]", KindArray},
		{"{}", KindObject},
		{"0", KindInt},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v := mustParse(t, tt.input)
			test.AssertEqual(t, tt.kind, v.Kind())
		})
	}

	test.AssertTrue(t, mustParse(t, "true").Bool(), "true parses to true")
	test.AssertTrue(t, !mustParse(t, "false").Bool(), "false parses to false")
}

func TestParseValue_Numbers(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		kind   Kind
		int    int64
		double float64
	}{
		{"zero", "0", KindInt, 0, 0},
		{"negative zero", "-0", KindInt, 0, 0},
		{"integer", "100", KindInt, 100, 0},
		{"negative integer", "-7", KindInt, -7, 0},
		{"large integer", "123456789012", KindInt, 123456789012, 0},
		{"max int64", "9223372036854775807", KindInt, math.MaxInt64, 0},
		{"min int64", "-9223372036854775808", KindInt, math.MinInt64, 0},
		{"fraction", "1.5", KindDouble, 0, 1.5},
		{"negative fraction", "-0.25", KindDouble, 0, -0.25},
		{"exponent", "1E2", KindDouble, 0, 100},
		{"signed exponent", "25e+1", KindDouble, 0, 250},
		{"negative exponent", "1.23e-10", KindDouble, 0, 1.23e-10},
		{"overflows int64", "9223372036854775808", KindDouble, 0, 9223372036854775808},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustParse(t, tt.input)
			test.AssertEqual(t, tt.kind, v.Kind())
			if tt.kind == KindInt {
				test.AssertEqual(t, tt.int, v.Int())
				return
			}
			if math.Abs(v.Double()-tt.double) > math.Abs(tt.double)*1e-12 {
				t.Errorf("Double() = %g, want %g", v.Double(), tt.double)
			}
		})
	}

	huge := mustParse(t, "1E400")
	test.AssertEqual(t, KindDouble, huge.Kind())
	test.AssertTrue(t, math.IsInf(huge.Double(), 1), "out of range exponent parses to +Inf")
}

func TestParseValue_Strings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", `"hello"`, "hello"},
		{"empty", `""`, ""},
		{"quote", `"a\"b"`, `a"b`},
		{"backslash", `"a\\b"`, `a\b`},
		{"control escapes", `"\b\f\n\r\t"`, "\b\f\n\r\t"},
		{"slash", `"a\/b"`, "a/b"},
		{"unicode escape kept literally", `"\u0041"`, "u0041"},
		{"utf8", `"Hello 世界"`, "Hello 世界"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustParse(t, tt.input)
			test.AssertEqual(t, KindString, v.Kind())
			test.AssertEqual(t, tt.expected, v.Text())
			test.AssertEqual(t, len(tt.expected), v.Len())
		})
	}
}

func TestParseValue_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		offset int
		err    error
	}{
		{"empty input", "", 0, ErrSyntax},
		{"missing member value", `{"a":}`, 5, ErrSyntax},
		{"trailing comma in array", `[1,2,]`, 5, ErrSyntax},
		{"missing comma", `[1 2]`, 3, ErrSyntax},
		{"missing colon", `{"a" 1}`, 5, ErrSyntax},
		{"unquoted name", `{a:1}`, 1, ErrSyntax},
		{"unterminated array", `[1,2`, 4, ErrSyntax},
		{"bare minus", `-`, 1, ErrSyntax},
		{"truncated literal", `nul`, 0, ErrSyntax},
		{"unterminated string", `"abc`, 4, ErrUnterminated},
		{"unterminated name", `{"ab`, 4, ErrUnterminated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseValue([]byte(tt.input))
			if v != nil {
				t.Fatalf("ParseValue() = %v, want nil", v)
			}
			test.AssertErrorIs(t, err, tt.err)
			test.AssertErrorIs(t, err, ErrSyntax)

			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error %v is not a *ParseError", err)
			}
			test.AssertEqual(t, tt.offset, perr.Offset)
		})
	}
}

func TestParseValue_Whitespace(t *testing.T) {
	// every byte up to and including space counts as blank
	v := mustParse(t, "\x01\x02[ 1 ,\x1f2\x05]")
	test.AssertEqual(t, 2, v.Len())
}

func TestParseValue_ArrayOrder(t *testing.T) {
	v := mustParse(t, "[3,1,2]")

	var got []int64
	for elem := range v.Elements() {
		got = append(got, elem.Int())
	}
	if diff := cmp.Diff([]int64{3, 1, 2}, got); diff != "" {
		t.Errorf("Elements() mismatch (-want +got):\n%s", diff)
	}

	var backward []int64
	for elem := range v.ElementsBackward() {
		backward = append(backward, elem.Int())
	}
	if diff := cmp.Diff([]int64{2, 1, 3}, backward); diff != "" {
		t.Errorf("ElementsBackward() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseValue_Nested(t *testing.T) {
	v := mustParse(t, `{"name":"api","tags":["a","b"],"limits":{"depth":3,"ratio":0.5},"extra":null}`)

	expected := map[string]any{
		"name":   "api",
		"tags":   []any{"a", "b"},
		"limits": map[string]any{"depth": int64(3), "ratio": 0.5},
		"extra":  nil,
	}
	if diff := cmp.Diff(expected, toAny(v)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}

	limits, ok := v.Get("limits")
	test.AssertTrue(t, ok, "limits member present")
	test.AssertTrue(t, limits.Parent() == v, "limits is owned by the root")

	tags, _ := v.Get("tags")
	for elem := range tags.Elements() {
		test.AssertTrue(t, elem.Parent() == tags, "elements are owned by their array")
	}
}

func TestParseValue_DuplicateKeys(t *testing.T) {
	v := mustParse(t, `{"a":1,"a":2}`)

	test.AssertEqual(t, 2, v.Len())
	a, ok := v.Get("a")
	test.AssertTrue(t, ok, "a member present")
	test.AssertEqual(t, int64(2), a.Int())
}

func TestParseValue_MaxDepth(t *testing.T) {
	_, err := ParseValue([]byte("[[[1]]]"), ParseOptions{MaxDepth: 2})
	test.AssertErrorIs(t, err, ErrTooDeep)
	test.AssertErrorIs(t, err, ErrSyntax)

	var perr *ParseError
	if errors.As(err, &perr) {
		test.AssertEqual(t, 2, perr.Offset)
	}

	v, err := ParseValue([]byte("[[1]]"), ParseOptions{MaxDepth: 2})
	test.AssertNoError(t, err)
	test.AssertEqual(t, 1, v.Len())
}

func TestParseValue_MaxStringLength(t *testing.T) {
	_, err := ParseValue([]byte(`{"abcd":1}`), ParseOptions{MaxStringLength: 3})
	test.AssertErrorIs(t, err, ErrAllocation)

	var perr *ParseError
	if errors.As(err, &perr) {
		test.AssertEqual(t, 1, perr.Offset)
	}

	_, err = ParseValue([]byte(`{"abc":1}`), ParseOptions{MaxStringLength: 3})
	test.AssertNoError(t, err)
}

func TestParseValue_TrailingBytesIgnored(t *testing.T) {
	v := mustParse(t, `{"a":1} trailing`)
	test.AssertEqual(t, 1, v.Len())
}

func BenchmarkParseValue(b *testing.B) {
	input := []byte(`{"service":"jsondoc","replicas":3,"ratio":0.75,"enabled":true,` +
		`"tags":["alpha","beta","gamma"],"limits":{"cpu":"500m","memory":"128Mi"},` +
		`"endpoints":[{"host":"a.internal","port":8080},{"host":"b.internal","port":8081}]}`)

	b.ReportAllocs()
	b.SetBytes(int64(len(input)))
	for i := 0; i < b.N; i++ {
		v, err := ParseValue(input)
		if err != nil {
			b.Fatal(err)
		}
		v.Release()
	}
}
