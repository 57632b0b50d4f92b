package source_test

import (
	"testing"

	"go.uber.org/zap"

	"wbc/source"
)

func TestParseSerialized(t *testing.T) {
	content := `
<!-- wp:heading {"level":3} -->
<h3>Title</h3>
<!-- /wp:heading -->

<!-- wp:columns -->
<div class="wp-block-columns"><!-- wp:column -->
<div class="wp-block-column"><!-- wp:paragraph {"dropCap":true} -->
<p>Body</p>
<!-- /wp:paragraph --></div>
<!-- /wp:column --></div>
<!-- /wp:columns -->

<!-- wp:separator /-->
`
	blocks, err := source.ParseSerialized(content, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 3 {
		t.Fatalf("got %d top-level blocks", len(blocks))
	}

	h := blocks[0]
	if h.Name != "core/heading" {
		t.Errorf("unnamespaced name must gain the core prefix: %q", h.Name)
	}
	if got := h.IntAttr("level", 0); got != 3 {
		t.Errorf("heading level = %d", got)
	}
	if h.InnerHTML != "<h3>Title</h3>" {
		t.Errorf("heading markup = %q", h.InnerHTML)
	}

	cols := blocks[1]
	if len(cols.Inner) != 1 || cols.Inner[0].Name != "core/column" {
		t.Fatalf("columns children: %+v", cols.Inner)
	}
	p := cols.Inner[0].Inner[0]
	if p.Name != "core/paragraph" || !p.BoolAttr("dropCap", false) {
		t.Errorf("nested paragraph: %+v", p)
	}
	if p.InnerHTML != "<p>Body</p>" {
		t.Errorf("paragraph markup = %q", p.InnerHTML)
	}

	sep := blocks[2]
	if sep.Name != "core/separator" || len(sep.Inner) != 0 || sep.InnerHTML != "" {
		t.Errorf("self-closing block: %+v", sep)
	}
}

func TestParseSerializedMalformedAttrs(t *testing.T) {
	blocks, err := source.ParseSerialized(`<!-- wp:paragraph {broken json -->x<!-- /wp:paragraph -->`, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks", len(blocks))
	}
	if len(blocks[0].Attrs) != 0 {
		t.Errorf("malformed attributes must degrade to an empty bag: %v", blocks[0].Attrs)
	}
}

func TestParseSerializedUnterminated(t *testing.T) {
	blocks, err := source.ParseSerialized(`<!-- wp:group --><div><!-- wp:paragraph --><p>tail</p>`, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].Name != "core/group" {
		t.Fatalf("unterminated outer block lost: %+v", blocks)
	}
	inner := blocks[0].Inner
	if len(inner) != 1 || inner[0].Name != "core/paragraph" || inner[0].InnerHTML != "<p>tail</p>" {
		t.Errorf("unterminated inner block: %+v", inner)
	}
}

func TestParseSerializedRegularComment(t *testing.T) {
	blocks, err := source.ParseSerialized(`<!-- wp:paragraph --><p>a <!-- note --> b</p><!-- /wp:paragraph -->`, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if blocks[0].InnerHTML != "<p>a <!--note--> b</p>" {
		t.Errorf("regular comment lost: %q", blocks[0].InnerHTML)
	}
}

func TestParseSerializedDashHeavyComments(t *testing.T) {
	// "<!---->" is an empty comment, its closer overlaps nothing
	blocks, err := source.ParseSerialized(`<!-- wp:paragraph --><p>a <!----> b</p><!-- /wp:paragraph -->`, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].InnerHTML != "<p>a <!----> b</p>" {
		t.Errorf("empty comment mangled: %+v", blocks)
	}

	// "<!--->" never closes, the tail is plain text
	blocks, err = source.ParseSerialized(`<!-- wp:paragraph --><p>x</p><!-- /wp:paragraph --><!--->`, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].InnerHTML != "<p>x</p>" {
		t.Errorf("trailing unclosed comment broke parsing: %+v", blocks)
	}

	blocks, err = source.ParseSerialized(`<!-- wp:paragraph --><p>y <!---></p>`, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].InnerHTML != "<p>y <!---></p>" {
		t.Errorf("unclosed comment inside a block: %+v", blocks)
	}
}

func TestParseSerializedStrayCloser(t *testing.T) {
	blocks, err := source.ParseSerialized(`<!-- /wp:paragraph --><!-- wp:spacer /-->`, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].Name != "core/spacer" {
		t.Errorf("stray closer must be skipped: %+v", blocks)
	}
}

func TestParseSerializedNoDelimiters(t *testing.T) {
	if _, err := source.ParseSerialized(`<p>classic editor content</p>`, zap.NewNop()); err == nil {
		t.Error("expected error for content without block delimiters")
	}

	blocks, err := source.ParseSerialized("   \n  ", zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 0 {
		t.Errorf("blank content must parse to nothing: %+v", blocks)
	}
}

func TestParseSerializedNamespacedName(t *testing.T) {
	blocks, err := source.ParseSerialized(`<!-- wp:custom/testimonial {"rating":4} --><p>Q</p><!-- /wp:custom/testimonial -->`, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if blocks[0].Name != "custom/testimonial" {
		t.Errorf("namespaced names must stay untouched: %q", blocks[0].Name)
	}
	if got := blocks[0].IntAttr("rating", 0); got != 4 {
		t.Errorf("rating = %d", got)
	}
}
