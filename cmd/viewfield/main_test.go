package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"kr.dev/diff"

	"blake.io/viewfield"
)

const testSite = "../../site/testdata/site.yaml"

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errb strings.Builder
	exit := func(code int) {
		t.Fatalf("exit(%d)\nstdout:\n%s\nstderr:\n%s", code, out.String(), errb.String())
	}
	err = run(context.Background(), &out, &errb, exit, args...)
	return out.String(), errb.String(), err
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "plain",
			args: []string{"args", `1,"a, b",,"say ""hi"""`},
			want: "\"1\"\n\"a, b\"\n\"\"\n\"say \\\"hi\\\"\"\n",
		},
		{
			name: "replace",
			args: []string{"args", "--set", "nid=42", `[node:nid],[node:title],[user:nid]`},
			want: "\"42\"\n\"[node:title]\"\n\"[user:nid]\"\n",
		},
		{
			name: "nested",
			args: []string{"args", "-s", "author:name=alice", "-s", "author:uid=7", `[node:author:name]/[node:author:uid]`},
			want: "\"alice/7\"\n",
		},
		{
			name: "type",
			args: []string{"args", "--type", "user", "--set", "name=bob", `[user:name],[node:name]`},
			want: "\"bob\"\n\"[node:name]\"\n",
		},
		{
			name: "encode",
			args: []string{"args", "--encode", "--set", "t=x,y", `[node:t],"q"`},
			want: "\"x,y\",q\n",
		},
		{
			name: "unterminated",
			args: []string{"args", `a,"b,c`},
			want: "\"a\"\n\"\\\"b,c\"\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := runCLI(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			diff.Test(t, t.Errorf, got, tt.want)
		})
	}
}

func TestRender(t *testing.T) {
	got, _, err := runCLI(t, "render", "--site", testSite, "user", "1")
	if err != nil {
		t.Fatal(err)
	}
	want := `<article class="entity entity--user" data-entity="user/1"><h2 class="entity__title">Alice</h2></article>` + "\n"
	diff.Test(t, t.Errorf, got, want)

	if _, _, err := runCLI(t, "render", "--site", testSite, "user", "9"); err == nil {
		t.Error("render of missing entity succeeded")
	}
}

func TestCheck(t *testing.T) {
	got, _, err := runCLI(t, "check", "--site", testSite, "node", "1",
		".view__title == Related to alice, again",
		"article count 3",
	)
	if err != nil {
		t.Fatal(err)
	}
	diff.Test(t, t.Errorf, got, "ok 2 checks\n")

	got, _, err = runCLI(t, "check", "--site", testSite, "node", "1",
		"article count 2",
		".field__item count 2",
	)
	if !errors.Is(err, errChecksFailed) {
		t.Fatalf("err = %v, want errChecksFailed", err)
	}
	diff.Test(t, t.Errorf, got, "FAIL article count 2\n\tarticle = `3`, want `2`\n")
}

func TestConfigFile(t *testing.T) {
	site, err := filepath.Abs(testSite)
	if err != nil {
		t.Fatal(err)
	}
	config := filepath.Join(t.TempDir(), "viewfield.yaml")
	data := "log_level: debug\nsite: " + site + "\n"
	if err := os.WriteFile(config, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	got, logs, err := runCLI(t, "--config", config, "render", "node", "3")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `data-entity="node/3"`) {
		t.Errorf("render output missing node/3:\n%s", got)
	}
	for _, want := range []string{"logger initialized", `msg="recursive render suppressed"`} {
		if !strings.Contains(logs, want) {
			t.Errorf("logs missing %q:\n%s", want, logs)
		}
	}

	// The command line overrides the file.
	_, logs, err = runCLI(t, "--config", config, "--log-level", "error", "render", "node", "3")
	if err != nil {
		t.Fatal(err)
	}
	if logs != "" {
		t.Errorf("logs at error level = %q, want none", logs)
	}
}

func TestLoadConfig(t *testing.T) {
	r, err := loadConfig(strings.NewReader("log_level: debug\nlog-caller: true\ncount: 3\nnames: [a, 2]\n"))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		flag string
		want any
	}{
		{"log-level", "debug"},
		{"log-caller", true},
		{"count", "3"},
		{"names", "a,2"},
		{"missing", nil},
	}
	for _, tt := range tests {
		got, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: tt.flag}})
		if err != nil {
			t.Fatal(err)
		}
		diff.Test(t, t.Errorf, got, tt.want)
	}

	if _, err := loadConfig(strings.NewReader("")); err != nil {
		t.Errorf("empty config: %v", err)
	}
	if _, err := loadConfig(strings.NewReader("[")); err == nil {
		t.Error("malformed config loaded")
	}
}

func TestProperties(t *testing.T) {
	got := properties(map[string]string{"a": "1", "b:c": "2", "b:d:e": "3"})
	want := viewfield.Map{
		"a": "1",
		"b": viewfield.Map{"c": "2", "d": viewfield.Map{"e": "3"}},
	}
	diff.Test(t, t.Errorf, got, want)
}

func TestProfile(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runCLI(t, "--profile-mode", "cpu", "--profile-dir", dir, "args", "a,b")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "cpu.pprof")); err != nil {
		t.Errorf("profile not written: %v", err)
	}
}
