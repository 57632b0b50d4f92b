package source_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"wbc/source"
)

func TestDirScriptResolver(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "wp-block-gallery-view.js"), []byte("console.log('g');"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := source.NewDirScriptResolver(dir, "https://site.test/assets/", zap.NewNop())

	ref, err := r.Resolve(context.Background(), "wp-block-gallery-view")
	if err != nil {
		t.Fatal(err)
	}
	if ref.SourceURL != "https://site.test/assets/wp-block-gallery-view.js" {
		t.Errorf("src = %q", ref.SourceURL)
	}
	if ref.Content != "console.log('g');" {
		t.Errorf("content = %q", ref.Content)
	}
	if len(ref.Dependencies) != 1 || ref.Dependencies[0] != "wp-dom-ready" {
		t.Errorf("deps = %v", ref.Dependencies)
	}

	// the dependency list must be caller owned
	ref.Dependencies[0] = "mutated"
	again, err := r.Resolve(context.Background(), "wp-block-gallery-view")
	if err != nil {
		t.Fatal(err)
	}
	if again.Dependencies[0] != "wp-dom-ready" {
		t.Error("resolver handed out shared dependency storage")
	}
}

func TestDirScriptResolverMissingFile(t *testing.T) {
	r := source.NewDirScriptResolver(t.TempDir(), "https://site.test/assets", zap.NewNop())

	ref, err := r.Resolve(context.Background(), "custom-testimonial-view")
	if err != nil {
		t.Fatal(err)
	}
	if ref.Content != "" {
		t.Errorf("missing file must leave content empty, got %q", ref.Content)
	}
	if ref.SourceURL != "https://site.test/assets/custom-testimonial-view.js" {
		t.Errorf("src = %q", ref.SourceURL)
	}
	if len(ref.Dependencies) != 1 {
		t.Errorf("deps = %v", ref.Dependencies)
	}
}

func TestDirScriptResolverUnknownHandle(t *testing.T) {
	r := source.NewDirScriptResolver(t.TempDir(), "https://site.test/assets", zap.NewNop())

	ref, err := r.Resolve(context.Background(), "acme-widget-view")
	if err != nil {
		t.Fatal(err)
	}
	if ref.Dependencies == nil || len(ref.Dependencies) != 0 {
		t.Errorf("unknown handles resolve with an empty dependency list: %v", ref.Dependencies)
	}
}
