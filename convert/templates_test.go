package convert

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"wbc/config"
	"wbc/source"
	"wbc/state"
)

func TestExpandTemplate(t *testing.T) {
	post := &source.Post{ID: 12, Title: "Hello, World!"}

	out, err := expandTemplate("output_name", "{{.PostID}}-{{.Slug}}", post)
	if err != nil {
		t.Fatal(err)
	}
	if out != "12-hello-world" {
		t.Errorf("expanded = %q", out)
	}

	out, err = expandTemplate("output_name", `{{.Title | upper | trunc 5}}`, post)
	if err != nil {
		t.Fatal(err)
	}
	if out != "HELLO" {
		t.Errorf("sprig functions unavailable: %q", out)
	}

	if _, err := expandTemplate("output_name", "{{.Broken", post); err == nil {
		t.Error("expected parse error")
	}
	if _, err := expandTemplate("output_name", "{{.NoSuchField}}", post); err == nil {
		t.Error("expected execute error")
	}
}

func newRenderEnv(tmpl string) *state.LocalEnv {
	cfg := &config.Config{}
	cfg.Render.OutputNameTemplate = tmpl
	return &state.LocalEnv{Cfg: cfg, Log: zap.NewNop()}
}

func TestBuildOutputBase(t *testing.T) {
	post := &source.Post{ID: 7, Title: "A Post"}

	got := buildOutputBase(post, "out", newRenderEnv(""))
	if got != filepath.Join("out", "7") {
		t.Errorf("default base = %q", got)
	}

	got = buildOutputBase(post, "out", newRenderEnv("{{.Slug}}_{{.PostID}}"))
	if got != filepath.Join("out", "a-post_7") {
		t.Errorf("templated base = %q", got)
	}

	// a broken template falls back to the post id instead of failing the run
	got = buildOutputBase(post, "out", newRenderEnv("{{.Oops"))
	if got != filepath.Join("out", "7") {
		t.Errorf("fallback base = %q", got)
	}

	// expansion results are cleaned for the local filesystem
	got = buildOutputBase(post, "out", newRenderEnv("a/b{{.PostID}}"))
	if got != filepath.Join("out", "ab7") {
		t.Errorf("separator survived cleaning: %q", got)
	}
}
