package site

import (
	"os"
	"strconv"
	"strings"

	"blake.io/viewfield"
)

// expand replaces positional parameters in s with args.
//
// $1 through $9 and ${n} expand to the n-th argument, and $* expands to
// every argument joined with "+". Anything else, including arguments that
// were not passed, expands to the empty string.
func expand(s string, args viewfield.Args) string {
	return os.Expand(s, func(name string) string {
		if name == "*" {
			return strings.Join(args, "+")
		}
		n, err := strconv.Atoi(name)
		if err != nil || n < 1 {
			return ""
		}
		return args.At(n - 1)
	})
}
