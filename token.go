package viewfield

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// placeholder matches [type:property]. The type may not contain whitespace,
// brackets, or colons; the property may not contain brackets.
var placeholder = regexp.MustCompile(`\[([^\s\[\]:]+):([^\[\]]+)\]`)

// Replace returns args with the placeholders of type typ replaced by
// properties of rec. The result has the same length and order as args.
// If rec is nil, args is returned unchanged.
func Replace(args Args, typ string, rec Record) Args {
	if rec == nil {
		return args
	}
	r := Replacer{Type: typ, Record: rec}
	out := make(Args, len(args))
	for i, arg := range args {
		out[i] = r.Replace(arg)
	}
	return out
}

// A Replacer replaces placeholders of a single type.
type Replacer struct {
	Type   string
	Record Record
}

// Replace replaces every [r.Type:property] placeholder in s whose property
// resolves against r.Record. Other placeholders are kept verbatim.
// Placeholders are replaced left to right in a single pass.
func (r Replacer) Replace(s string) string {
	if r.Record == nil || !strings.Contains(s, "[") {
		return s
	}
	matches := placeholder.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, m := range matches {
		typ, path := s[m[2]:m[3]], s[m[4]:m[5]]
		if typ != r.Type {
			continue
		}
		v, ok := Resolve(r.Record, path)
		if !ok {
			continue
		}
		b.WriteString(s[last:m[0]])
		b.WriteString(v)
		last = m[1]
	}
	if last == 0 {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

// Resolve walks the colon separated property path against rec and returns the
// final value as a string. Intermediate values must be a Record or a
// map[string]any.
func Resolve(rec Record, path string) (string, bool) {
	var v any = rec
	for name := range strings.SplitSeq(path, ":") {
		var ok bool
		switch r := v.(type) {
		case Record:
			v, ok = r.Property(name)
		case map[string]any:
			v, ok = r[name]
		}
		if !ok {
			return "", false
		}
	}
	return stringify(v)
}

func stringify(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}
