package render_test

import (
	"context"
	"slices"
	"testing"

	"wbc/block"
	"wbc/render"
)

// stubMedia is a fixed attachment catalog for extractor tests.
type stubMedia map[int]*render.Attachment

func (s stubMedia) Attachment(_ context.Context, id int) (*render.Attachment, error) {
	return s[id], nil
}

func dispatch(cv *render.Converter, b *block.Block) *block.RenderNode {
	if b.Attrs == nil {
		b.Attrs = map[string]any{}
	}
	return cv.Registry().Dispatch(context.Background(), b)
}

func TestParagraph(t *testing.T) {
	cv := newTestConverter(nil)

	b := &block.Block{
		Name:      "core/paragraph",
		InnerHTML: `<p>Go <strong>home</strong>, <a href="https://x.test" data-id="9">link</a><script>evil()</script></p>`,
		Attrs: map[string]any{
			"dropCap":   true,
			"align":     "center",
			"textColor": "vivid red",
			"style": map[string]any{
				"color":      map[string]any{"text": "#123456"},
				"typography": map[string]any{"fontSize": "19px"},
			},
		},
	}
	n := dispatch(cv, b)

	if n.Kind != "text" || n.Template != "paragraph" {
		t.Fatalf("kind/template = %s/%s", n.Kind, n.Template)
	}
	for _, want := range []string{"has-drop-cap", "has-text-align-center", "has-text-color", "has-vivid-red-color"} {
		if !slices.Contains(n.Classes, want) {
			t.Errorf("missing class %q in %v", want, n.Classes)
		}
	}

	// custom values ride as inline declarations, after any preset classes
	wantStyles := []string{"color: #123456", "font-size: 19px"}
	for i, decl := range n.InlineStyles {
		if decl.String() != wantStyles[i] {
			t.Errorf("style[%d] = %q, want %q", i, decl.String(), wantStyles[i])
		}
	}

	text, _ := n.Data["text"].(string)
	if text != `Go <strong>home</strong>, <a href="https://x.test">link</a>evil()` {
		t.Errorf("plain form = %q", text)
	}
	if n.Data["drop_cap"] != true {
		t.Error("drop_cap payload missing")
	}
}

func TestParagraphNoDropCap(t *testing.T) {
	cv := newTestConverter(nil)
	n := dispatch(cv, &block.Block{Name: "core/paragraph", InnerHTML: "<p>x</p>"})

	if slices.Contains(n.Classes, "has-drop-cap") {
		t.Error("has-drop-cap must only appear when dropCap is true")
	}
}

func TestHeadingDefaults(t *testing.T) {
	cv := newTestConverter(nil)

	n := dispatch(cv, &block.Block{Name: "core/heading", InnerHTML: "<h2>Intro &amp; more</h2>"})
	if n.Data["level"] != 2 {
		t.Errorf("default level = %v, want 2", n.Data["level"])
	}
	if n.Data["text"] != "Intro & more" {
		t.Errorf("heading text = %q", n.Data["text"])
	}
	if len(n.Classes) != 0 {
		t.Errorf("level must not contribute classes: %v", n.Classes)
	}

	n = dispatch(cv, &block.Block{
		Name:  "core/heading",
		Attrs: map[string]any{"level": float64(4), "textAlign": "right"},
	})
	if n.Data["level"] != 4 {
		t.Errorf("level = %v, want 4", n.Data["level"])
	}
	if !slices.Contains(n.Classes, "has-text-align-right") {
		t.Errorf("textAlign class missing: %v", n.Classes)
	}
}

func TestExternalLinkClassification(t *testing.T) {
	cv := newTestConverter(nil) // canonical https://example.com

	cases := []struct {
		url  string
		want bool
	}{
		{"", false},
		{"/about", false},
		{"https://example.com/post", false},
		{"https://example.com", false},
		{"https://other.test/x", true},
		{"http://example.com/post", true}, // literal prefix match, scheme matters
		{"mailto:x@example.com", true},
	}
	for _, tc := range cases {
		b := &block.Block{Name: "core/button", Attrs: map[string]any{"url": tc.url}}
		n := dispatch(cv, b)
		if got := n.Data["is_external"]; got != tc.want {
			t.Errorf("isExternal(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

func TestButtonDefaults(t *testing.T) {
	cv := newTestConverter(nil)

	b := &block.Block{
		Name:      "core/button",
		InnerHTML: `<a class="wp-block-button__link">Buy <em>now</em></a>`,
		Attrs:     map[string]any{"url": "https://shop.test"},
	}
	n := dispatch(cv, b)

	if n.Data["text"] != "Buy now" {
		t.Errorf("button text = %q", n.Data["text"])
	}
	if n.Data["link_target"] != "" {
		t.Errorf("link target must default to empty, got %q", n.Data["link_target"])
	}

	b = &block.Block{
		Name: "core/button",
		Attrs: map[string]any{
			"text":  "Go",
			"width": float64(75),
			"style": map[string]any{"border": map[string]any{"radius": "8px"}},
		},
	}
	n = dispatch(cv, b)
	for _, want := range []string{"has-custom-width", "wp-block-button__width-75"} {
		if !slices.Contains(n.Classes, want) {
			t.Errorf("missing class %q in %v", want, n.Classes)
		}
	}
	if len(n.InlineStyles) != 1 || n.InlineStyles[0].String() != "border-radius: 8px" {
		t.Errorf("border radius style = %v", n.InlineStyles)
	}
}

func TestTestimonialStars(t *testing.T) {
	cv := newTestConverter(nil)

	cases := []struct {
		name   string
		attrs  map[string]any
		stars  string
		rating int
	}{
		{"default five", map[string]any{}, "★★★★★", 5},
		{"three", map[string]any{"rating": float64(3)}, "★★★☆☆", 3},
		{"zero", map[string]any{"rating": float64(0)}, "☆☆☆☆☆", 0},
		{"negative saturates empty", map[string]any{"rating": float64(-2)}, "☆☆☆☆☆", -2},
		{"above five saturates full", map[string]any{"rating": float64(9)}, "★★★★★", 9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &block.Block{Name: "custom/testimonial", InnerHTML: "<p>Great</p>", Attrs: tc.attrs}
			n := dispatch(cv, b)
			if n.Data["stars"] != tc.stars {
				t.Errorf("stars = %q, want %q", n.Data["stars"], tc.stars)
			}
			if n.Data["rating"] != tc.rating {
				t.Errorf("rating = %v, want %d", n.Data["rating"], tc.rating)
			}
		})
	}
}

func TestTestimonialHidesStars(t *testing.T) {
	cv := newTestConverter(nil)
	b := &block.Block{
		Name:  "custom/testimonial",
		Attrs: map[string]any{"showRating": false, "author": "<b>Ann</b>", "role": "CTO"},
	}
	n := dispatch(cv, b)

	if _, ok := n.Data["stars"]; ok {
		t.Error("stars must be absent when showRating is false")
	}
	if n.Data["author"] != "Ann" || n.Data["role"] != "CTO" {
		t.Errorf("author/role = %v/%v", n.Data["author"], n.Data["role"])
	}
}

func TestTestimonialAvatar(t *testing.T) {
	media := stubMedia{
		7: {URL: "https://cdn.test/ann.jpg", Sizes: map[string]string{"thumbnail": "https://cdn.test/ann-150.jpg"}},
	}
	cv := newTestConverter(media)

	b := &block.Block{Name: "custom/testimonial", Attrs: map[string]any{"avatarId": float64(7)}}
	n := dispatch(cv, b)
	if n.Data["avatar_url"] != "https://cdn.test/ann-150.jpg" {
		t.Errorf("avatar_url = %v", n.Data["avatar_url"])
	}
}

func TestImageResolution(t *testing.T) {
	media := stubMedia{
		11: {
			URL: "https://cdn.test/full.jpg",
			Alt: "stored alt",
			Sizes: map[string]string{
				"thumbnail": "https://cdn.test/t.jpg",
				"medium":    "https://cdn.test/m.jpg",
				// large deliberately absent
				"full": "https://cdn.test/full.jpg",
			},
		},
	}
	cv := newTestConverter(media)

	b := &block.Block{
		Name:  "core/image",
		Attrs: map[string]any{"id": float64(11), "url": "https://stale.test/cached.jpg"},
	}
	n := dispatch(cv, b)

	if n.Data["url"] != "https://cdn.test/full.jpg" {
		t.Errorf("resolved url must win over the cached one, got %v", n.Data["url"])
	}
	if n.Data["alt"] != "stored alt" {
		t.Errorf("alt = %v", n.Data["alt"])
	}

	sizes := n.Data["sizes"].(map[string]any)
	if sizes["medium"] != "https://cdn.test/m.jpg" {
		t.Errorf("medium size = %v", sizes["medium"])
	}
	if sizes["large"] != "" {
		t.Errorf("unresolvable size must be an empty string, got %q", sizes["large"])
	}
	if !slices.Contains(n.Classes, "size-large") {
		t.Errorf("default sizeSlug class missing: %v", n.Classes)
	}
}

func TestImageUnknownAttachment(t *testing.T) {
	cv := newTestConverter(stubMedia{})

	b := &block.Block{Name: "core/image", Attrs: map[string]any{"id": float64(99), "url": "https://site.test/i.jpg"}}
	n := dispatch(cv, b)

	// miss degrades, attribute url survives
	if n.Data["url"] != "https://site.test/i.jpg" {
		t.Errorf("url = %v", n.Data["url"])
	}
	sizes := n.Data["sizes"].(map[string]any)
	for _, variant := range []string{"thumbnail", "medium", "large", "full"} {
		if sizes[variant] != "" {
			t.Errorf("size %s = %q, want empty", variant, sizes[variant])
		}
	}
}

func TestGalleryEntryShapes(t *testing.T) {
	media := stubMedia{
		3: {URL: "https://cdn.test/3.jpg", Alt: "three", Sizes: map[string]string{"full": "https://cdn.test/3.jpg"}},
	}
	cv := newTestConverter(media)

	b := &block.Block{
		Name: "core/gallery",
		Attrs: map[string]any{
			"images": []any{
				map[string]any{"id": float64(3)},
				map[string]any{"url": "https://flickr.test/x.jpg", "alt": "ext", "caption": "cc"},
				map[string]any{"id": "3"}, // numeric string form
			},
		},
	}
	n := dispatch(cv, b)

	if !slices.Contains(n.Classes, "columns-3") {
		t.Errorf("default columns class missing: %v", n.Classes)
	}
	if !slices.Contains(n.Classes, "is-cropped") {
		t.Errorf("imageCrop defaults to true: %v", n.Classes)
	}

	images := n.Data["images"].([]any)
	if len(images) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(images))
	}

	resolved := images[0].(map[string]any)
	if resolved["url"] != "https://cdn.test/3.jpg" {
		t.Errorf("resolved entry url = %v", resolved["url"])
	}
	if _, ok := resolved["sizes"]; !ok {
		t.Error("resolved entry must carry a sizes key")
	}

	bare := images[1].(map[string]any)
	if bare["url"] != "https://flickr.test/x.jpg" || bare["caption"] != "cc" {
		t.Errorf("bare entry = %v", bare)
	}
	if _, ok := bare["sizes"]; ok {
		t.Error("bare entry must not carry a sizes key")
	}

	stringID := images[2].(map[string]any)
	if stringID["url"] != "https://cdn.test/3.jpg" {
		t.Errorf("numeric string id entry not resolved: %v", stringID)
	}
}

func TestCoverDefaults(t *testing.T) {
	cv := newTestConverter(nil)

	b := &block.Block{
		Name:  "core/cover",
		Attrs: map[string]any{"url": "https://cdn.test/hero.jpg", "hasParallax": true},
	}
	n := dispatch(cv, b)

	for _, want := range []string{"has-background-dim", "has-background-dim-50", "has-parallax"} {
		if !slices.Contains(n.Classes, want) {
			t.Errorf("missing class %q in %v", want, n.Classes)
		}
	}
	if len(n.InlineStyles) == 0 || n.InlineStyles[0].String() != "background-image: url(https://cdn.test/hero.jpg)" {
		t.Errorf("background style = %v", n.InlineStyles)
	}
}

func TestSpacerDefaults(t *testing.T) {
	cv := newTestConverter(nil)

	n := dispatch(cv, &block.Block{Name: "core/spacer"})
	if n.Data["height"] != "100px" {
		t.Errorf("default height = %v", n.Data["height"])
	}

	n = dispatch(cv, &block.Block{Name: "core/spacer", Attrs: map[string]any{"height": float64(40)}})
	if n.Data["height"] != "40px" {
		t.Errorf("legacy numeric height = %v", n.Data["height"])
	}

	n = dispatch(cv, &block.Block{Name: "core/spacer", Attrs: map[string]any{"height": "3rem"}})
	if n.Data["height"] != "3rem" {
		t.Errorf("unit height = %v", n.Data["height"])
	}
}

func TestMediaTextLayout(t *testing.T) {
	cv := newTestConverter(nil)

	b := &block.Block{
		Name: "core/media-text",
		Attrs: map[string]any{
			"mediaUrl":      "https://cdn.test/m.jpg",
			"mediaPosition": "right",
			"mediaWidth":    float64(30),
		},
	}
	n := dispatch(cv, b)

	if !slices.Contains(n.Classes, "has-media-on-the-right") {
		t.Errorf("position class missing: %v", n.Classes)
	}
	if !slices.Contains(n.Classes, "is-stacked-on-mobile") {
		t.Errorf("stacking defaults on: %v", n.Classes)
	}
	if len(n.InlineStyles) != 1 || n.InlineStyles[0].String() != "grid-template-columns: auto 30%" {
		t.Errorf("grid style = %v", n.InlineStyles)
	}
}

func TestListOrdering(t *testing.T) {
	cv := newTestConverter(nil)

	n := dispatch(cv, &block.Block{Name: "core/list"})
	if n.Data["tag"] != "ul" || n.Data["ordered"] != false {
		t.Errorf("unordered defaults: %v", n.Data)
	}
	if _, ok := n.Data["start"]; ok {
		t.Error("start must be absent for unordered lists")
	}

	n = dispatch(cv, &block.Block{
		Name:  "core/list",
		Attrs: map[string]any{"ordered": true, "start": float64(4), "reversed": true},
	})
	if n.Data["tag"] != "ol" || n.Data["start"] != 4 || n.Data["reversed"] != true {
		t.Errorf("ordered list payload: %v", n.Data)
	}
}
