package render

import (
	"context"
	"strings"

	"wbc/block"
)

const (
	starFilled = "★"
	starEmpty  = "☆"
	starCount  = 5
)

// starRow renders the fixed five position star sequence. Position i is
// filled iff i <= rating; positions past five never materialize, so ratings
// above five saturate at five filled glyphs and negative ratings yield none.
func starRow(rating int) string {
	var sb strings.Builder
	for i := 1; i <= starCount; i++ {
		if i <= rating {
			sb.WriteString(starFilled)
		} else {
			sb.WriteString(starEmpty)
		}
	}
	return sb.String()
}

// testimonial handles the custom testimonial block: a quote with author,
// role, optional avatar attachment and a star rating.
func (cv *Converter) testimonial(ctx context.Context, b *block.Block) *block.RenderNode {
	n := cv.newNode(b, "widget", "testimonial")

	n.Data["quote"] = stripTagsExcept(b.InnerHTML, paragraphInlineTags)
	if author := b.StringAttr("author", ""); author != "" {
		n.Data["author"] = stripTags(author)
	}
	if role := b.StringAttr("role", ""); role != "" {
		n.Data["role"] = stripTags(role)
	}

	rating := b.IntAttr("rating", 5)
	n.Data["rating"] = rating
	show := b.BoolAttr("showRating", true)
	n.Data["show_rating"] = show
	if show {
		n.Data["stars"] = starRow(rating)
	}

	if id := b.IntAttr("avatarId", 0); id > 0 {
		att := cv.resolveAttachment(ctx, id)
		n.Data["avatar_url"] = att.Sizes["thumbnail"]
	}

	applyCommon(b, n)
	cv.applyColors(b, n)
	return n
}
