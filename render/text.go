package render

import (
	"context"

	"wbc/block"
)

// Text family handlers. All of them are pure functions of the block's
// attributes and raw content.

func (cv *Converter) paragraph(_ context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "text", "paragraph")

	if b.BoolAttr("dropCap", false) {
		n.AddClass("has-drop-cap")
	}
	applyTextAlign(b, n, "align")
	applyCommon(b, n)
	cv.applyColors(b, n)

	// plain form keeps the inline formatting allow-list instead of
	// stripping everything
	n.Data["text"] = stripTagsExcept(b.InnerHTML, paragraphInlineTags)
	n.Data["drop_cap"] = b.BoolAttr("dropCap", false)
	return n
}

func (cv *Converter) heading(_ context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "text", "heading")

	// level affects the data payload only, never the class list
	n.Data["level"] = b.IntAttr("level", 2)
	n.Data["text"] = stripTags(b.InnerHTML)

	applyTextAlign(b, n, "textAlign")
	applyCommon(b, n)
	cv.applyColors(b, n)
	return n
}

func (cv *Converter) list(_ context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "text", "list")

	ordered := b.BoolAttr("ordered", false)
	n.Data["ordered"] = ordered
	if ordered {
		n.Data["tag"] = "ol"
		if start := b.IntAttr("start", 1); start != 1 {
			n.Data["start"] = start
		}
		n.Data["reversed"] = b.BoolAttr("reversed", false)
	} else {
		n.Data["tag"] = "ul"
	}

	applyCommon(b, n)
	cv.applyColors(b, n)
	return n
}

func (cv *Converter) listItem(_ context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "text", "list-item")
	n.Data["text"] = stripTagsExcept(b.InnerHTML, paragraphInlineTags)
	applyCommon(b, n)
	return n
}

func (cv *Converter) quote(_ context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "text", "quote")

	if citation := b.StringAttr("citation", ""); citation != "" {
		n.Data["citation"] = stripTags(citation)
	}
	applyTextAlign(b, n, "align")
	applyCommon(b, n)
	cv.applyColors(b, n)
	return n
}

func (cv *Converter) pullquote(_ context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "text", "pullquote")

	if citation := b.StringAttr("citation", ""); citation != "" {
		n.Data["citation"] = stripTags(citation)
	}
	n.Data["text"] = stripTagsExcept(b.InnerHTML, paragraphInlineTags)

	// pullquote belongs to the layout alignment family (alignwide/alignfull)
	applyBlockAlign(b, n)
	applyCommon(b, n)
	cv.applyColors(b, n)
	return n
}

func (cv *Converter) code(_ context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "text", "code")
	n.Data["code"] = stripTags(b.InnerHTML)
	applyCommon(b, n)
	return n
}

func (cv *Converter) preformatted(_ context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "text", "preformatted")
	n.Data["text"] = stripTags(b.InnerHTML)
	applyCommon(b, n)
	cv.applyColors(b, n)
	return n
}

func (cv *Converter) verse(_ context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "text", "verse")
	n.Data["text"] = stripTagsExcept(b.InnerHTML, map[string]bool{"br": true})
	applyTextAlign(b, n, "textAlign")
	applyCommon(b, n)
	cv.applyColors(b, n)
	return n
}

func (cv *Converter) table(_ context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "text", "table")

	if b.BoolAttr("hasFixedLayout", false) {
		n.AddClass("has-fixed-layout")
	}
	if caption := b.StringAttr("caption", ""); caption != "" {
		n.Data["caption"] = stripTags(caption)
	}
	// the table markup itself is consumed verbatim by the template
	n.Data["html"] = b.InnerHTML

	applyCommon(b, n)
	cv.applyColors(b, n)
	return n
}
