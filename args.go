package viewfield

import (
	"strings"
	"unicode"
)

// ParseArgs splits the argument expression s into its positional arguments.
//
// Arguments are separated by commas. An argument that starts with a quote
// runs to the matching closing quote and may contain commas; a doubled quote
// inside it stands for one literal quote. A quoted argument that is never
// closed consumes the rest of s verbatim, opening quote included.
//
// ParseArgs never fails and runs in time linear in len(s).
// It returns no arguments for the empty string.
func ParseArgs(s string) Args {
	var args Args
	for pos := 0; pos < len(s); {
		if s[pos] == '"' {
			arg, n, ok := cutQuoted(s[pos:])
			if !ok {
				args = append(args, s[pos:])
				break
			}
			args = append(args, arg)
			pos += n
			if pos < len(s) && s[pos] == ',' {
				pos++
			}
			continue
		}

		i := strings.IndexByte(s[pos:], ',')
		if i < 0 {
			args = append(args, s[pos:])
			break
		}
		args = append(args, s[pos:pos+i])
		pos += i + 1
	}
	return args
}

// cutQuoted reads the quoted argument at the start of s, which must begin
// with a quote. It returns the unescaped argument and the number of bytes
// consumed, or ok == false if the argument is never closed.
//
// A run of quotes of even length inside the argument is a run of escaped
// quotes. The first run of odd length closes the argument; its last quote is
// the closing one.
func cutQuoted(s string) (arg string, n int, ok bool) {
	for i := 1; ; {
		j := strings.IndexByte(s[i:], '"')
		if j < 0 {
			return "", 0, false
		}
		j += i
		k := j
		for k < len(s) && s[k] == '"' {
			k++
		}
		if (k-j)%2 == 1 {
			return strings.ReplaceAll(s[1:k-1], `""`, `"`), k, true
		}
		i = k
	}
}

// Args represents the positional arguments parsed from an expression.
type Args []string

// At returns the i-th argument,
// or the empty string if i is out of bounds.
func (a Args) At(i int) string {
	if i < 0 || i >= len(a) {
		return ""
	}
	return a[i]
}

// String encodes a as an argument expression that [ParseArgs] parses back
// into a. Arguments are quoted only when they need to be.
func (a Args) String() string {
	var b strings.Builder
	for i, arg := range a {
		if i > 0 {
			b.WriteByte(',')
		}
		if !needsQuote(arg) {
			b.WriteString(arg)
			continue
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(arg, `"`, `""`))
		b.WriteByte('"')
	}
	return b.String()
}

// needsQuote reports whether arg cannot be written as a plain argument.
// Empty arguments are quoted so that a trailing one survives.
func needsQuote(arg string) bool {
	return arg == "" || arg[0] == '"' || strings.Contains(arg, ",")
}

// ParseFields splits s into at most n whitespace-separated fields.
// The final field contains any remaining text after the first n-1 splits.
// Returns empty if n is zero or s is empty. A negative n means no limit.
func ParseFields(s string, n int) []string {
	if n == 0 {
		return nil
	}
	var fields []string
	unlimited := n < 0
	for s != "" {
		if n == 1 && !unlimited {
			fields = append(fields, s)
			break
		}
		var f string
		f, s = cutField(s)
		fields = append(fields, f)
		n--
	}
	return fields
}

// ParseFields3 splits s into three whitespace-separated fields.
// The third field contains any remaining text after the first two splits.
func ParseFields3(s string) (a, b, c string) {
	f := Args(ParseFields(s, 3))
	return f.At(0), f.At(1), f.At(2)
}

// cutField slices s around the first run of whitespace,
// returning the text before and after the run.
func cutField(s string) (string, string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}
