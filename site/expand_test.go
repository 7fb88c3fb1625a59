package site

import (
	"testing"

	"blake.io/viewfield"
)

func TestExpand(t *testing.T) {
	args := viewfield.Args{"1", "two", "", "4", "5", "6", "7", "8", "9", "ten"}
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"node/$1", "node/1"},
		{"$2-$3-$4", "two--4"},
		{"${10}", "ten"},
		{"$10", "10"},
		{"${11}", ""},
		{"$0", ""},
		{"$x", ""},
		{"${name}", ""},
		{"$*", "1+two++4+5+6+7+8+9+ten"},
		{"$$", ""},
	}
	for _, tt := range tests {
		if got := expand(tt.in, args); got != tt.want {
			t.Errorf("expand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := expand("node/$*", nil); got != "node/" {
		t.Errorf("expand(node/$*, nil) = %q, want node/", got)
	}
}
