package source_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"wbc/source"
)

func TestFileThemeProvider(t *testing.T) {
	dir := t.TempDir()
	sheet := filepath.Join(dir, "theme.css")
	settings := filepath.Join(dir, "theme.yaml")

	if err := os.WriteFile(sheet, []byte(":root { --x: 1; }"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(settings, []byte(`
color:
  primary: "#1a5276"
  accent: "teal"
spacing:
  unit: 8px
site-width: 1200px
`), 0o644); err != nil {
		t.Fatal(err)
	}

	p := source.NewFileThemeProvider(sheet, settings, zap.NewNop())
	gctx, err := p.GlobalStyles(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if gctx.BaseStylesheetText != ":root { --x: 1; }" {
		t.Errorf("stylesheet = %q", gctx.BaseStylesheetText)
	}

	want := []struct{ name, value string }{
		{"color-primary", "#1a5276"},
		{"color-accent", "teal"},
		{"spacing-unit", "8px"},
		{"site-width", "1200px"},
	}
	if len(gctx.Variables) != len(want) {
		t.Fatalf("variables = %+v", gctx.Variables)
	}
	for i, w := range want {
		if gctx.Variables[i].Name != w.name || gctx.Variables[i].Value != w.value {
			t.Errorf("variable[%d] = %+v, want %+v", i, gctx.Variables[i], w)
		}
	}
}

func TestFileThemeProviderOptionalPaths(t *testing.T) {
	p := source.NewFileThemeProvider("", "", zap.NewNop())
	gctx, err := p.GlobalStyles(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if gctx.BaseStylesheetText != "" || len(gctx.Variables) != 0 {
		t.Errorf("empty paths must yield an empty context: %+v", gctx)
	}
}

func TestFileThemeProviderMissingFile(t *testing.T) {
	p := source.NewFileThemeProvider(filepath.Join(t.TempDir(), "nope.css"), "", zap.NewNop())
	if _, err := p.GlobalStyles(context.Background()); err == nil {
		t.Error("a configured but unreadable stylesheet must fail")
	}
}

func TestFileThemeProviderBadSettings(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, "theme.yaml")
	if err := os.WriteFile(settings, []byte("- a\n- b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := source.NewFileThemeProvider("", settings, zap.NewNop())
	if _, err := p.GlobalStyles(context.Background()); err == nil {
		t.Error("a sequence root is not a settings document")
	}
}
