package render

import (
	"context"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"wbc/block"
)

// applyColors maps the preset/custom color and typography attributes to
// classes and inline styles. Preset tokens become a marker class plus a
// slug-specific class; literal custom values become inline declarations.
// Presets are emitted before customs so customs win in declaration order
// under any cascade respecting renderer.
func (cv *Converter) applyColors(b *block.Block, n *block.RenderNode) {
	if preset := b.StringAttr("textColor", ""); preset != "" {
		n.AddClass("has-text-color", "has-"+slug.Make(preset)+"-color")
	}
	if preset := b.StringAttr("backgroundColor", ""); preset != "" {
		n.AddClass("has-background", "has-"+slug.Make(preset)+"-background-color")
	}
	if preset := b.StringAttr("gradient", ""); preset != "" {
		n.AddClass("has-background", "has-"+slug.Make(preset)+"-gradient-background")
	}
	if preset := b.StringAttr("fontSize", ""); preset != "" {
		n.AddClass("has-font-size", "has-"+slug.Make(preset)+"-font-size")
	}

	// custom overrides follow presets
	if v := b.NestedString("style", "color", "text"); v != "" {
		n.AddStyle("color", v)
	}
	if v := b.NestedString("style", "color", "background"); v != "" {
		n.AddStyle("background-color", v)
	}
	if v := b.NestedString("style", "color", "gradient"); v != "" {
		n.AddStyle("background", v)
	}
	if v := b.NestedString("style", "typography", "fontSize"); v != "" {
		n.AddStyle("font-size", v)
	}
	if v := b.NestedString("style", "typography", "lineHeight"); v != "" {
		n.AddStyle("line-height", v)
	}
}

// applyTextAlign adds the text family alignment class. Text blocks carry
// has-text-align-{value}; this must not be unified with the media/layout
// family's align{value} form.
func applyTextAlign(b *block.Block, n *block.RenderNode, attr string) {
	if v := b.StringAttr(attr, ""); v != "" {
		n.AddClass("has-text-align-" + v)
	}
}

// applyBlockAlign adds the media/layout family alignment class.
func applyBlockAlign(b *block.Block, n *block.RenderNode) {
	if v := b.StringAttr("align", ""); v != "" {
		n.AddClass("align" + v)
	}
}

// applyCommon handles the attributes shared by nearly every handler: the
// custom className attribute (may hold several space separated classes) and
// the HTML anchor.
func applyCommon(b *block.Block, n *block.RenderNode) {
	n.AddClass(strings.Fields(b.StringAttr("className", ""))...)
	if anchor := b.StringAttr("anchor", ""); anchor != "" {
		n.Data["anchor"] = anchor
	}
}

// isExternal classifies a URL against the canonical site URL. A URL is
// external iff it is non-empty, does not start with the site URL and does
// not start with "/". The match is a literal prefix comparison - no URL
// parsing, scheme or host-case normalization.
func (cv *Converter) isExternal(url string) bool {
	if url == "" {
		return false
	}
	if strings.HasPrefix(url, "/") {
		return false
	}
	if cv.site != "" && strings.HasPrefix(url, cv.site) {
		return false
	}
	return true
}

// resolveAttachment fetches attachment metadata, degrading every failure to
// an empty result so malformed content renders instead of erroring out.
func (cv *Converter) resolveAttachment(ctx context.Context, id int) *Attachment {
	if cv.media == nil || id <= 0 {
		return &Attachment{Sizes: map[string]string{}}
	}
	att, err := cv.media.Attachment(ctx, id)
	if err != nil || att == nil {
		if err != nil {
			cv.log.Debug("Media lookup miss", zap.Int("id", id), zap.Error(err))
		}
		return &Attachment{Sizes: map[string]string{}}
	}
	return att
}

// sizeMap returns the four named size variants for an attachment. Variants
// the resolver cannot produce resolve to empty strings, never errors.
func sizeMap(att *Attachment) map[string]any {
	sizes := make(map[string]any, len(sizeVariants))
	for _, name := range sizeVariants {
		sizes[name] = att.Sizes[name]
	}
	return sizes
}

// presetSlug normalizes a design token name into its class slug form.
func presetSlug(name string) string {
	return slug.Make(name)
}

// trimFloat formats a numeric attribute without trailing zeros, so 420.0
// becomes "420" and 1.5 stays "1.5".
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// stripTags removes all markup from an HTML fragment, keeping text content
// only. Entities are decoded by the tokenizer.
func stripTags(fragment string) string {
	var sb strings.Builder
	tz := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch tz.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(sb.String())
		case html.TextToken:
			sb.Write(tz.Text())
		}
	}
}

// paragraphInlineTags is the allow-list kept by the paragraph plain form.
var paragraphInlineTags = map[string]bool{
	"strong": true,
	"em":     true,
	"a":      true,
	"br":     true,
	"span":   true,
}

// inlineAttrs lists the attributes re-emitted for kept tags.
var inlineAttrs = map[string]bool{
	"href":   true,
	"target": true,
	"rel":    true,
	"class":  true,
}

// stripTagsExcept removes markup except for the allow-listed inline tags,
// which are re-emitted with their link and class attributes only.
func stripTagsExcept(fragment string, allow map[string]bool) string {
	var sb strings.Builder
	tz := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := tz.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimSpace(sb.String())
		case html.TextToken:
			sb.Write(tz.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := tz.Token()
			if !allow[tok.Data] {
				continue
			}
			sb.WriteByte('<')
			sb.WriteString(tok.Data)
			for _, a := range tok.Attr {
				if !inlineAttrs[a.Key] {
					continue
				}
				sb.WriteByte(' ')
				sb.WriteString(a.Key)
				sb.WriteString(`="`)
				sb.WriteString(html.EscapeString(a.Val))
				sb.WriteByte('"')
			}
			if tt == html.SelfClosingTagToken {
				sb.WriteByte('/')
			}
			sb.WriteByte('>')
		case html.EndTagToken:
			tok := tz.Token()
			if !allow[tok.Data] {
				continue
			}
			sb.WriteString("</")
			sb.WriteString(tok.Data)
			sb.WriteByte('>')
		}
	}
}
