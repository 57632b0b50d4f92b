package render

import (
	"context"
	"fmt"

	"wbc/block"
)

// Media family handlers. These are the only handlers that reach outside the
// block tree - attachment metadata comes through the media resolver, and
// every lookup miss degrades to empty fields.

func (cv *Converter) image(ctx context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "media", "image")

	id := b.IntAttr("id", 0)
	url := b.StringAttr("url", "")
	alt := b.StringAttr("alt", "")
	caption := b.StringAttr("caption", "")

	if id > 0 {
		att := cv.resolveAttachment(ctx, id)
		if att.URL != "" {
			url = att.URL
		}
		if alt == "" {
			alt = att.Alt
		}
		if caption == "" {
			caption = att.Caption
		}
		n.Data["sizes"] = sizeMap(att)
		n.Data["id"] = id
	}

	n.Data["url"] = url
	n.Data["alt"] = alt
	if caption != "" {
		n.Data["caption"] = stripTags(caption)
	}

	sizeSlug := b.StringAttr("sizeSlug", "large")
	n.AddClass("size-" + sizeSlug)
	n.Data["size_slug"] = sizeSlug

	if href := b.StringAttr("href", ""); href != "" {
		n.Data["href"] = href
		n.Data["is_external"] = cv.isExternal(href)
		if target := b.StringAttr("linkTarget", ""); target != "" {
			n.Data["link_target"] = target
		}
	}

	if width := b.IntAttr("width", 0); width > 0 {
		n.AddStyle("width", fmt.Sprintf("%dpx", width))
	}
	if height := b.IntAttr("height", 0); height > 0 {
		n.AddStyle("height", fmt.Sprintf("%dpx", height))
	}

	applyBlockAlign(b, n)
	applyCommon(b, n)
	return n
}

func (cv *Converter) gallery(ctx context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "media", "gallery")

	columns := b.IntAttr("columns", 3)
	n.AddClass(fmt.Sprintf("columns-%d", columns))
	n.Data["columns"] = columns

	if b.BoolAttr("imageCrop", true) {
		n.AddClass("is-cropped")
	}
	if linkTo := b.StringAttr("linkTo", ""); linkTo != "" {
		n.Data["link_to"] = linkTo
	}

	// Entries come in two shapes: attachment references resolved through
	// the media store and bare external references used literally. Both
	// coexist in the output list in original order; only resolved entries
	// carry a sizes key.
	images := make([]any, 0, len(b.ListAttr("images")))
	for _, raw := range b.ListAttr("images") {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		item := map[string]any{}
		if id, ok := entryID(entry); ok {
			att := cv.resolveAttachment(ctx, id)
			item["id"] = id
			item["url"] = att.URL
			item["alt"] = att.Alt
			item["caption"] = att.Caption
			item["sizes"] = sizeMap(att)
		} else {
			if v, ok := entry["url"].(string); ok {
				item["url"] = v
			}
			if v, ok := entry["alt"].(string); ok {
				item["alt"] = v
			}
			if v, ok := entry["caption"].(string); ok {
				item["caption"] = v
			}
		}
		images = append(images, item)
	}
	n.Data["images"] = images

	applyBlockAlign(b, n)
	applyCommon(b, n)
	return n
}

// entryID extracts an attachment ID from a gallery entry. Gallery markup
// stores IDs as numbers or numeric strings depending on editor version.
func entryID(entry map[string]any) (int, bool) {
	switch v := entry["id"].(type) {
	case float64:
		if v > 0 {
			return int(v), true
		}
	case int:
		if v > 0 {
			return v, true
		}
	case string:
		var id int
		if _, err := fmt.Sscanf(v, "%d", &id); err == nil && id > 0 {
			return id, true
		}
	}
	return 0, false
}

func (cv *Converter) audio(ctx context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "media", "audio")

	src := b.StringAttr("src", "")
	if id := b.IntAttr("id", 0); id > 0 {
		att := cv.resolveAttachment(ctx, id)
		if att.URL != "" {
			src = att.URL
		}
		n.Data["id"] = id
		n.Data["mime"] = att.MIME
	}
	n.Data["src"] = src
	n.Data["autoplay"] = b.BoolAttr("autoplay", false)
	n.Data["loop"] = b.BoolAttr("loop", false)
	if preload := b.StringAttr("preload", ""); preload != "" {
		n.Data["preload"] = preload
	}
	if caption := b.StringAttr("caption", ""); caption != "" {
		n.Data["caption"] = stripTags(caption)
	}

	applyBlockAlign(b, n)
	applyCommon(b, n)
	return n
}

func (cv *Converter) video(ctx context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "media", "video")

	src := b.StringAttr("src", "")
	if id := b.IntAttr("id", 0); id > 0 {
		att := cv.resolveAttachment(ctx, id)
		if att.URL != "" {
			src = att.URL
		}
		n.Data["id"] = id
		n.Data["mime"] = att.MIME
	}
	n.Data["src"] = src
	n.Data["controls"] = b.BoolAttr("controls", true)
	n.Data["autoplay"] = b.BoolAttr("autoplay", false)
	n.Data["loop"] = b.BoolAttr("loop", false)
	n.Data["muted"] = b.BoolAttr("muted", false)
	n.Data["plays_inline"] = b.BoolAttr("playsInline", false)
	if poster := b.StringAttr("poster", ""); poster != "" {
		n.Data["poster"] = poster
	}
	if caption := b.StringAttr("caption", ""); caption != "" {
		n.Data["caption"] = stripTags(caption)
	}

	applyBlockAlign(b, n)
	applyCommon(b, n)
	return n
}

func (cv *Converter) file(ctx context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "media", "file")

	href := b.StringAttr("href", "")
	name := b.StringAttr("fileName", "")
	if id := b.IntAttr("id", 0); id > 0 {
		att := cv.resolveAttachment(ctx, id)
		if att.URL != "" {
			href = att.URL
		}
		n.Data["id"] = id
		n.Data["mime"] = att.MIME
	}
	n.Data["href"] = href
	n.Data["is_external"] = cv.isExternal(href)
	if name != "" {
		n.Data["file_name"] = stripTags(name)
	}
	n.Data["show_download_button"] = b.BoolAttr("showDownloadButton", true)
	if label := b.StringAttr("downloadButtonText", ""); label != "" {
		n.Data["download_button_text"] = stripTags(label)
	}

	applyBlockAlign(b, n)
	applyCommon(b, n)
	return n
}

func (cv *Converter) cover(ctx context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "media", "cover")

	url := b.StringAttr("url", "")
	if id := b.IntAttr("id", 0); id > 0 {
		att := cv.resolveAttachment(ctx, id)
		if att.URL != "" {
			url = att.URL
		}
		n.Data["id"] = id
	}
	if url != "" {
		n.Data["url"] = url
		n.AddStyle("background-image", fmt.Sprintf("url(%s)", url))
	}

	dim := b.IntAttr("dimRatio", 50)
	n.Data["dim_ratio"] = dim
	if dim > 0 {
		n.AddClass("has-background-dim", fmt.Sprintf("has-background-dim-%d", dim))
	}

	if preset := b.StringAttr("overlayColor", ""); preset != "" {
		n.AddClass("has-" + presetSlug(preset) + "-background-color")
	}
	if custom := b.StringAttr("customOverlayColor", ""); custom != "" {
		n.AddStyle("background-color", custom)
	}

	if b.BoolAttr("hasParallax", false) {
		n.AddClass("has-parallax")
	}
	if minHeight := b.FloatAttr("minHeight", 0); minHeight > 0 {
		unit := b.StringAttr("minHeightUnit", "px")
		n.AddStyle("min-height", trimFloat(minHeight)+unit)
	}

	applyBlockAlign(b, n)
	applyCommon(b, n)
	return n
}

func (cv *Converter) mediaText(ctx context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "media", "media-text")

	url := b.StringAttr("mediaUrl", "")
	if id := b.IntAttr("mediaId", 0); id > 0 {
		att := cv.resolveAttachment(ctx, id)
		if att.URL != "" {
			url = att.URL
		}
		n.Data["media_id"] = id
		n.Data["sizes"] = sizeMap(att)
	}
	n.Data["media_url"] = url
	n.Data["media_type"] = b.StringAttr("mediaType", "image")

	position := b.StringAttr("mediaPosition", "left")
	n.Data["media_position"] = position
	if position == "right" {
		n.AddClass("has-media-on-the-right")
	}

	width := b.IntAttr("mediaWidth", 50)
	n.Data["media_width"] = width
	if width != 50 {
		if position == "right" {
			n.AddStyle("grid-template-columns", fmt.Sprintf("auto %d%%", width))
		} else {
			n.AddStyle("grid-template-columns", fmt.Sprintf("%d%% auto", width))
		}
	}

	if b.BoolAttr("isStackedOnMobile", true) {
		n.AddClass("is-stacked-on-mobile")
	}
	if v := b.StringAttr("verticalAlignment", ""); v != "" {
		n.AddClass("is-vertically-aligned-" + v)
	}

	applyBlockAlign(b, n)
	applyCommon(b, n)
	cv.applyColors(b, n)
	return n
}

func (cv *Converter) embed(_ context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "media", "embed")

	url := b.StringAttr("url", "")
	n.Data["url"] = url
	n.Data["is_external"] = cv.isExternal(url)
	if caption := b.StringAttr("caption", ""); caption != "" {
		n.Data["caption"] = stripTags(caption)
	}
	if typ := b.StringAttr("type", ""); typ != "" {
		n.Data["embed_type"] = typ
		n.AddClass("is-type-" + typ)
	}
	if provider := b.StringAttr("providerNameSlug", ""); provider != "" {
		n.Data["provider"] = provider
		n.AddClass("is-provider-" + provider)
	}
	if b.BoolAttr("responsive", false) {
		n.AddClass("wp-has-aspect-ratio")
	}

	applyBlockAlign(b, n)
	applyCommon(b, n)
	return n
}
