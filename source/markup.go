package source

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"wbc/block"
)

// ParseSerialized parses serialized block markup - post content with
// Gutenberg comment delimiters - into a block tree:
//
//	<!-- wp:heading {"level":3} --><h3>Hi</h3><!-- /wp:heading -->
//	<!-- wp:separator /-->
//
// Unterminated blocks are closed at end of input, the parser is permissive
// the same way the WordPress one is. A block's InnerHTML is the markup that
// belongs to the block itself, child block content excluded.
func ParseSerialized(content string, log *zap.Logger) ([]*block.Block, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		roots []*block.Block
		stack []*block.Block
	)

	appendText := func(text string) {
		if len(stack) == 0 {
			return // top-level text between blocks is not block content
		}
		top := stack[len(stack)-1]
		top.InnerHTML += text
	}

	closeTop := func() {
		top := stack[len(stack)-1]
		top.InnerHTML = strings.TrimSpace(top.InnerHTML)
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			roots = append(roots, top)
		} else {
			parent := stack[len(stack)-1]
			parent.Inner = append(parent.Inner, top)
		}
	}

	rest := content
	for {
		idx := strings.Index(rest, "<!--")
		if idx < 0 {
			appendText(rest)
			break
		}
		appendText(rest[:idx])
		rest = rest[idx:]

		// the closer is searched past the opener so dash-heavy comments
		// like "<!--->" cannot terminate inside it
		end := strings.Index(rest[len("<!--"):], "-->")
		if end < 0 {
			// not a comment after all, keep the tail as text
			appendText(rest)
			break
		}
		comment := strings.TrimSpace(rest[len("<!--") : len("<!--")+end])
		rest = rest[len("<!--")+end+len("-->"):]

		switch {
		case strings.HasPrefix(comment, "/wp:"):
			if len(stack) == 0 {
				log.Debug("Stray block closer", zap.String("comment", comment))
				continue
			}
			closeTop()

		case strings.HasPrefix(comment, "wp:"):
			selfClosing := strings.HasSuffix(comment, "/")
			body := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(comment, "wp:"), "/"))

			name, rawAttrs, _ := strings.Cut(body, " ")
			b := &block.Block{
				Name:  qualifyName(name),
				Attrs: parseAttrs(rawAttrs, log),
			}
			if selfClosing {
				if len(stack) == 0 {
					roots = append(roots, b)
				} else {
					parent := stack[len(stack)-1]
					parent.Inner = append(parent.Inner, b)
				}
				continue
			}
			stack = append(stack, b)

		default:
			// regular HTML comment, part of the markup
			appendText("<!--" + comment + "-->")
		}
	}

	// close whatever is still open, innermost first
	for len(stack) > 0 {
		log.Debug("Unterminated block", zap.String("type", stack[len(stack)-1].Name))
		closeTop()
	}

	if len(roots) == 0 && strings.TrimSpace(content) != "" && !strings.Contains(content, "<!-- wp:") {
		return nil, fmt.Errorf("content carries no block delimiters")
	}
	return roots, nil
}

// qualifyName expands the serialized short form: a name without a namespace
// belongs to core, so "paragraph" becomes "core/paragraph".
func qualifyName(name string) string {
	if name == "" || strings.Contains(name, "/") {
		return name
	}
	return "core/" + name
}

// parseAttrs decodes the optional JSON attribute bag following the block
// name. Malformed attributes degrade to an empty bag - content issues never
// fail parsing.
func parseAttrs(raw string, log *zap.Logger) map[string]any {
	attrs := map[string]any{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return attrs
	}
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		log.Debug("Malformed block attributes", zap.String("raw", raw), zap.Error(err))
		return map[string]any{}
	}
	return attrs
}
