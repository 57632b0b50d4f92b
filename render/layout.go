package render

import (
	"context"

	"wbc/block"
)

// Layout and design family handlers.

func (cv *Converter) button(_ context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "design", "button")

	url := b.StringAttr("url", "")
	n.Data["url"] = url
	n.Data["is_external"] = cv.isExternal(url)

	text := b.StringAttr("text", "")
	if text == "" {
		text = stripTags(b.InnerHTML)
	} else {
		text = stripTags(text)
	}
	n.Data["text"] = text

	// target defaults to none - an empty string on the wire
	n.Data["link_target"] = b.StringAttr("linkTarget", "")
	if rel := b.StringAttr("rel", ""); rel != "" {
		n.Data["rel"] = rel
	}

	if width := b.IntAttr("width", 0); width > 0 {
		n.AddClass("has-custom-width", "wp-block-button__width-"+trimFloat(float64(width)))
	}
	if radius := b.NestedString("style", "border", "radius"); radius != "" {
		n.AddStyle("border-radius", radius)
	}

	applyCommon(b, n)
	cv.applyColors(b, n)
	return n
}

func (cv *Converter) buttons(_ context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "design", "buttons")

	if layout := b.MapAttr("layout"); layout != nil {
		if v, ok := layout["justifyContent"].(string); ok && v != "" {
			n.AddClass("is-content-justification-" + v)
			n.Data["justification"] = v
		}
	}

	applyBlockAlign(b, n)
	applyCommon(b, n)
	return n
}

func (cv *Converter) columns(_ context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "design", "columns")

	if v := b.StringAttr("verticalAlignment", ""); v != "" {
		n.AddClass("are-vertically-aligned-" + v)
	}
	if !b.BoolAttr("isStackedOnMobile", true) {
		n.AddClass("is-not-stacked-on-mobile")
	}

	applyBlockAlign(b, n)
	applyCommon(b, n)
	cv.applyColors(b, n)
	return n
}

func (cv *Converter) column(_ context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "design", "column")

	if width := b.StringAttr("width", ""); width != "" {
		n.AddStyle("flex-basis", width)
		n.Data["width"] = width
	}
	if v := b.StringAttr("verticalAlignment", ""); v != "" {
		n.AddClass("is-vertically-aligned-" + v)
	}

	applyCommon(b, n)
	cv.applyColors(b, n)
	return n
}

func (cv *Converter) group(_ context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "design", "group")

	n.Data["tag"] = b.StringAttr("tagName", "div")
	if layout := b.MapAttr("layout"); layout != nil {
		if v, ok := layout["type"].(string); ok && v != "" {
			n.AddClass("is-layout-" + v)
			n.Data["layout"] = v
		}
	}

	applyBlockAlign(b, n)
	applyCommon(b, n)
	cv.applyColors(b, n)
	return n
}

func (cv *Converter) separator(_ context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "design", "separator")
	applyBlockAlign(b, n)
	applyCommon(b, n)
	cv.applyColors(b, n)
	return n
}

func (cv *Converter) spacer(_ context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "design", "spacer")

	height := b.StringAttr("height", "")
	if height == "" {
		// older markup stores a bare pixel number
		if v := b.FloatAttr("height", 0); v > 0 {
			height = trimFloat(v) + "px"
		} else {
			height = "100px"
		}
	}
	n.AddStyle("height", height)
	n.Data["height"] = height

	if width := b.StringAttr("width", ""); width != "" {
		n.AddStyle("width", width)
		n.Data["width"] = width
	}

	applyCommon(b, n)
	return n
}
