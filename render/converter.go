// Package render implements the block conversion pipeline: a type indexed
// handler registry, the per-type attribute extractors and the tree walker
// that turns a parsed block tree into the normalized render model.
package render

import (
	"context"

	"go.uber.org/zap"

	"wbc/block"
)

// DefaultMaxDepth bounds block tree recursion when the configuration does
// not say otherwise.
const DefaultMaxDepth = 64

// Attachment is the media metadata the converter consumes for media bearing
// blocks. Sizes maps the named size variants to URLs.
type Attachment struct {
	URL     string
	Alt     string
	Caption string
	MIME    string
	Sizes   map[string]string
}

// MediaResolver supplies attachment metadata by WordPress attachment ID.
// Lookup misses degrade to empty render fields and never fail a conversion.
type MediaResolver interface {
	Attachment(ctx context.Context, id int) (*Attachment, error)
}

// sizeVariants are requested for every resolved media reference. A variant
// the resolver cannot produce resolves to an empty string.
var sizeVariants = []string{"thumbnail", "medium", "large", "full"}

// Converter owns the handler registry and the site context the extractors
// need. It performs no I/O of its own except media lookups through the
// resolver, and keeps no mutable state between conversions.
type Converter struct {
	site     string
	media    MediaResolver
	maxDepth int
	log      *zap.Logger
	reg      *Registry
}

// New creates a converter for the given canonical site URL with the built-in
// handler set registered. A nil resolver is allowed - all media lookups then
// come back empty. maxDepth <= 0 selects DefaultMaxDepth.
func New(siteURL string, media MediaResolver, maxDepth int, log *zap.Logger) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	cv := &Converter{
		site:     siteURL,
		media:    media,
		maxDepth: maxDepth,
		log:      log.Named("render"),
		reg:      NewRegistry(log),
	}
	cv.registerBuiltins()
	return cv
}

// Registry exposes the handler registry so callers can override built-in
// handlers or add custom block types.
func (cv *Converter) Registry() *Registry {
	return cv.reg
}

// newNode creates a render node pre-filled with the fields every handler
// shares: raw content and the original block name.
func (cv *Converter) newNode(b *block.Block, kind, template string) *block.RenderNode {
	n := block.NewRenderNode(kind, template, b.Name)
	n.Content = b.InnerHTML
	return n
}

func (cv *Converter) registerBuiltins() {
	for _, reg := range []struct {
		name    string
		handler Handler
		info    TypeInfo
	}{
		{"core/paragraph", cv.paragraph, TypeInfo{
			Title:       "Paragraph",
			Description: "A block of flowing text.",
			Attributes:  attrSchema("content", "string", "align", "string", "dropCap", "boolean", "textColor", "string", "backgroundColor", "string", "fontSize", "string"),
			Supports:    map[string]any{"anchor": true, "color": true, "typography": true},
			Category:    "text",
			Keywords:    []string{"text"},
		}},
		{"core/heading", cv.heading, TypeInfo{
			Title:       "Heading",
			Description: "A section heading, levels one through six.",
			Attributes:  attrSchema("level", "integer", "content", "string", "textAlign", "string", "anchor", "string"),
			Supports:    map[string]any{"anchor": true, "color": true, "typography": true},
			Category:    "text",
			Keywords:    []string{"title", "subtitle"},
		}},
		{"core/list", cv.list, TypeInfo{
			Title:       "List",
			Description: "An ordered or unordered list of items.",
			Attributes:  attrSchema("ordered", "boolean", "start", "integer", "reversed", "boolean"),
			Supports:    map[string]any{"anchor": true, "typography": true},
			Category:    "text",
			Keywords:    []string{"bullet", "numbered"},
		}},
		{"core/list-item", cv.listItem, TypeInfo{
			Title:       "List Item",
			Description: "A single entry of a list block.",
			Attributes:  attrSchema("content", "string"),
			Supports:    map[string]any{"typography": true},
			Category:    "text",
		}},
		{"core/quote", cv.quote, TypeInfo{
			Title:       "Quote",
			Description: "Quoted text with an optional citation.",
			Attributes:  attrSchema("citation", "string", "align", "string"),
			Supports:    map[string]any{"anchor": true, "color": true},
			Category:    "text",
			Keywords:    []string{"blockquote", "cite"},
		}},
		{"core/pullquote", cv.pullquote, TypeInfo{
			Title:       "Pullquote",
			Description: "A prominent quote pulled out of the text flow.",
			Attributes:  attrSchema("citation", "string", "align", "string", "textColor", "string", "backgroundColor", "string"),
			Supports:    map[string]any{"anchor": true, "color": true},
			Category:    "text",
		}},
		{"core/code", cv.code, TypeInfo{
			Title:       "Code",
			Description: "Preformatted code kept verbatim.",
			Attributes:  attrSchema("content", "string"),
			Supports:    map[string]any{"anchor": true},
			Category:    "text",
			Keywords:    []string{"source", "pre"},
		}},
		{"core/preformatted", cv.preformatted, TypeInfo{
			Title:       "Preformatted",
			Description: "Text rendered exactly as typed.",
			Attributes:  attrSchema("content", "string"),
			Supports:    map[string]any{"anchor": true, "color": true},
			Category:    "text",
		}},
		{"core/verse", cv.verse, TypeInfo{
			Title:       "Verse",
			Description: "Poetry with preserved line breaks and indentation.",
			Attributes:  attrSchema("content", "string", "textAlign", "string"),
			Supports:    map[string]any{"anchor": true, "typography": true},
			Category:    "text",
			Keywords:    []string{"poetry", "poem"},
		}},
		{"core/table", cv.table, TypeInfo{
			Title:       "Table",
			Description: "Tabular data with an optional caption.",
			Attributes:  attrSchema("hasFixedLayout", "boolean", "caption", "string"),
			Supports:    map[string]any{"anchor": true, "color": true},
			Category:    "text",
		}},
		{"core/image", cv.image, TypeInfo{
			Title:       "Image",
			Description: "A single image with optional link and caption.",
			Attributes:  attrSchema("id", "integer", "url", "string", "alt", "string", "caption", "string", "align", "string", "sizeSlug", "string", "href", "string", "linkTarget", "string"),
			Supports:    map[string]any{"anchor": true},
			Category:    "media",
			Keywords:    []string{"img", "photo", "picture"},
		}},
		{"core/gallery", cv.gallery, TypeInfo{
			Title:       "Gallery",
			Description: "Multiple images in a column grid.",
			Attributes:  attrSchema("images", "array", "columns", "integer", "imageCrop", "boolean", "linkTo", "string"),
			Supports:    map[string]any{"anchor": true, "align": true},
			Category:    "media",
			ViewScript:  "wp-block-gallery-view",
		}},
		{"core/audio", cv.audio, TypeInfo{
			Title:       "Audio",
			Description: "An embedded audio player.",
			Attributes:  attrSchema("id", "integer", "src", "string", "autoplay", "boolean", "loop", "boolean", "preload", "string", "caption", "string"),
			Supports:    map[string]any{"anchor": true, "align": true},
			Category:    "media",
			Keywords:    []string{"music", "sound", "podcast"},
		}},
		{"core/video", cv.video, TypeInfo{
			Title:       "Video",
			Description: "An embedded video player.",
			Attributes:  attrSchema("id", "integer", "src", "string", "poster", "string", "controls", "boolean", "autoplay", "boolean", "loop", "boolean", "muted", "boolean", "playsInline", "boolean", "caption", "string"),
			Supports:    map[string]any{"anchor": true, "align": true},
			Category:    "media",
			Keywords:    []string{"movie"},
		}},
		{"core/file", cv.file, TypeInfo{
			Title:       "File",
			Description: "A link to a downloadable file.",
			Attributes:  attrSchema("id", "integer", "href", "string", "fileName", "string", "downloadButtonText", "string", "showDownloadButton", "boolean"),
			Supports:    map[string]any{"anchor": true, "align": true},
			Category:    "media",
			Keywords:    []string{"document", "pdf", "download"},
			ViewScript:  "wp-block-file-view",
		}},
		{"core/cover", cv.cover, TypeInfo{
			Title:       "Cover",
			Description: "Content on top of an image or color background.",
			Attributes:  attrSchema("url", "string", "id", "integer", "dimRatio", "integer", "overlayColor", "string", "customOverlayColor", "string", "minHeight", "number", "minHeightUnit", "string", "hasParallax", "boolean", "align", "string"),
			Supports:    map[string]any{"anchor": true, "align": true},
			Category:    "media",
			Keywords:    []string{"hero", "banner"},
		}},
		{"core/media-text", cv.mediaText, TypeInfo{
			Title:       "Media & Text",
			Description: "Media and text side by side.",
			Attributes:  attrSchema("mediaId", "integer", "mediaUrl", "string", "mediaType", "string", "mediaPosition", "string", "mediaWidth", "integer", "isStackedOnMobile", "boolean", "verticalAlignment", "string"),
			Supports:    map[string]any{"anchor": true, "align": true, "color": true},
			Category:    "media",
		}},
		{"core/embed", cv.embed, TypeInfo{
			Title:       "Embed",
			Description: "Embedded content from an external provider.",
			Attributes:  attrSchema("url", "string", "caption", "string", "type", "string", "providerNameSlug", "string", "responsive", "boolean"),
			Supports:    map[string]any{"anchor": true, "align": true},
			Category:    "embed",
			Keywords:    []string{"youtube", "twitter", "oembed"},
		}},
		{"core/button", cv.button, TypeInfo{
			Title:       "Button",
			Description: "A call to action link styled as a button.",
			Attributes:  attrSchema("url", "string", "text", "string", "linkTarget", "string", "rel", "string", "width", "integer", "textColor", "string", "backgroundColor", "string"),
			Supports:    map[string]any{"anchor": true, "color": true},
			Category:    "design",
			Keywords:    []string{"cta", "link"},
		}},
		{"core/buttons", cv.buttons, TypeInfo{
			Title:       "Buttons",
			Description: "A row of button blocks.",
			Attributes:  attrSchema("layout", "object", "align", "string"),
			Supports:    map[string]any{"anchor": true, "align": true},
			Category:    "design",
		}},
		{"core/columns", cv.columns, TypeInfo{
			Title:       "Columns",
			Description: "A multi-column layout container.",
			Attributes:  attrSchema("verticalAlignment", "string", "isStackedOnMobile", "boolean", "align", "string"),
			Supports:    map[string]any{"anchor": true, "align": true, "color": true},
			Category:    "design",
		}},
		{"core/column", cv.column, TypeInfo{
			Title:       "Column",
			Description: "A single column within a columns block.",
			Attributes:  attrSchema("width", "string", "verticalAlignment", "string"),
			Supports:    map[string]any{"anchor": true, "color": true},
			Category:    "design",
		}},
		{"core/group", cv.group, TypeInfo{
			Title:       "Group",
			Description: "A generic grouping container.",
			Attributes:  attrSchema("tagName", "string", "layout", "object", "align", "string"),
			Supports:    map[string]any{"anchor": true, "align": true, "color": true},
			Category:    "design",
			Keywords:    []string{"container", "section"},
		}},
		{"core/separator", cv.separator, TypeInfo{
			Title:       "Separator",
			Description: "A horizontal divider between sections.",
			Attributes:  attrSchema("backgroundColor", "string", "align", "string"),
			Supports:    map[string]any{"anchor": true, "color": true},
			Category:    "design",
			Keywords:    []string{"hr", "divider"},
		}},
		{"core/spacer", cv.spacer, TypeInfo{
			Title:       "Spacer",
			Description: "Empty vertical space of a fixed height.",
			Attributes:  attrSchema("height", "string", "width", "string"),
			Supports:    map[string]any{"anchor": true},
			Category:    "design",
		}},
		{"custom/testimonial", cv.testimonial, TypeInfo{
			Title:       "Testimonial",
			Description: "A customer quote with author, role and star rating.",
			Attributes:  attrSchema("author", "string", "role", "string", "rating", "integer", "showRating", "boolean", "avatarId", "integer"),
			Supports:    map[string]any{"anchor": true, "color": true},
			Category:    "widgets",
			Keywords:    []string{"review", "rating"},
			ViewScript:  "custom-testimonial-view",
		}},
	} {
		cv.reg.Register(reg.name, reg.handler, reg.info)
	}
}

// attrSchema builds the name -> {type} attribute descriptor map from
// alternating name/type pairs.
func attrSchema(pairs ...string) map[string]any {
	out := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out[pairs[i]] = map[string]any{"type": pairs[i+1]}
	}
	return out
}
