package viewfield

import (
	"slices"
	"testing"

	"kr.dev/diff"
)

func TestParseArgs(t *testing.T) {
	cases := []struct {
		s    string
		want Args
	}{
		{"", nil},
		{"a", Args{"a"}},
		{"a,b", Args{"a", "b"}},
		{"a,,b", Args{"a", "", "b"}},
		{",", Args{""}},
		{",a", Args{"", "a"}},
		{"a,", Args{"a"}},
		{" a , b ", Args{" a ", " b "}}, // whitespace is kept
		{`"a,b",c`, Args{"a,b", "c"}},
		{`"say ""hi""",x`, Args{`say "hi"`, "x"}},
		{`""`, Args{""}},
		{`"",""`, Args{"", ""}},
		{`"",`, Args{""}},
		{`"a"`, Args{"a"}},
		{`"a"""`, Args{`a"`}},
		{`"""a"`, Args{`"a`}},
		{`"a""""b"`, Args{`a""b`}},
		{`"a"b,c`, Args{"a", "b", "c"}},
		{`a"b,c`, Args{`a"b`, "c"}},
		{`1,"value with, comma",node/1`, Args{"1", "value with, comma", "node/1"}},

		// Unterminated quotes take the rest verbatim.
		{`"unterminated`, Args{`"unterminated`}},
		{`a,"b,c`, Args{"a", `"b,c`}},
		{`"`, Args{`"`}},
		{`"a""`, Args{`"a""`}},
		{`"""`, Args{`"""`}},
	}
	for _, tt := range cases {
		got := ParseArgs(tt.s)
		if !slices.Equal(got, tt.want) {
			t.Errorf("ParseArgs(%#q) = %#v, want %#v", tt.s, got, tt.want)
		}
	}
}

func TestArgsString(t *testing.T) {
	cases := []struct {
		args Args
		want string
	}{
		{nil, ""},
		{Args{"a", "b"}, "a,b"},
		{Args{"a,b", "c"}, `"a,b",c`},
		{Args{`say "hi"`}, `say "hi"`},
		{Args{`"quoted`}, `"""quoted"`},
		{Args{"a", ""}, `a,""`},
		{Args{""}, `""`},
	}
	for _, tt := range cases {
		got := tt.args.String()
		if got != tt.want {
			t.Errorf("%#v.String() = %#q, want %#q", tt.args, got, tt.want)
		}
	}
}

func TestArgsAt(t *testing.T) {
	a := Args{"x", "y"}
	for i, want := range []string{"", "x", "y", ""} {
		if got := a.At(i - 1); got != want {
			t.Errorf("At(%d) = %q, want %q", i-1, got, want)
		}
	}
}

func FuzzParseArgs(f *testing.F) {
	f.Add("")
	f.Add("a,,b")
	f.Add(`"a,b",c`)
	f.Add(`"say ""hi""",x`)
	f.Add(`"unterminated`)
	f.Add(`"a""`)
	f.Add(`[node:nid],"a,b"`)
	f.Fuzz(func(t *testing.T, s string) {
		args := ParseArgs(s)
		if s == "" && len(args) != 0 {
			t.Fatalf("ParseArgs(%#q) = %#v, want no arguments", s, args)
		}
		if s != "" && len(args) == 0 {
			t.Fatalf("ParseArgs(%#q) returned no arguments", s)
		}
		again := ParseArgs(args.String())
		diff.Test(t, t.Errorf, again, args)
	})
}

func TestParseFields(t *testing.T) {
	cases := []struct {
		n    int
		s    string
		want []string
	}{
		{-1, "", nil},
		{0, "a b", nil},
		{1, "a b", []string{"a b"}},
		{2, "a  b c", []string{"a", "b c"}},
		{3, "a b", []string{"a", "b"}},
		{-1, "a\tb\n c", []string{"a", "b", "c"}},
		{2, "  a b", []string{"a", "b"}},
	}
	for _, tt := range cases {
		got := ParseFields(tt.s, tt.n)
		if !slices.Equal(got, tt.want) {
			t.Errorf("ParseFields(%q, %d) = %#v, want %#v", tt.s, tt.n, got, tt.want)
		}
	}
}

func TestParseFields3(t *testing.T) {
	a, b, c := ParseFields3("div.view count 2 rows")
	if a != "div.view" || b != "count" || c != "2 rows" {
		t.Errorf("ParseFields3 = %q, %q, %q", a, b, c)
	}
}

func TestCutField(t *testing.T) {
	tests := []struct {
		input    string
		wantHead string
		wantTail string
	}{
		{"hello world", "hello", "world"},
		{"hello\tworld", "hello", "world"},
		{"hello   world", "hello", "world"},
		{"hello", "hello", ""},
		{"", "", ""},
		{" \t \n ", "", ""},
		{"hello world   ", "hello", "world   "},
		{"hello world", "hello", "world"},
		{"\u200B\u200C", "\u200B\u200C", ""}, // not whitespace to unicode.IsSpace
	}
	for _, tt := range tests {
		head, tail := cutField(tt.input)
		if head != tt.wantHead || tail != tt.wantTail {
			t.Errorf("cutField(%q) = %q, %q, want %q, %q", tt.input, head, tail, tt.wantHead, tt.wantTail)
		}
	}
}
