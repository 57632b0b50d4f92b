// Package style assembles document level assets for a rendered post: the
// aggregated stylesheet text and the deduplicated view script manifest.
package style

import (
	"context"
	_ "embed"
	"strings"

	"go.uber.org/zap"

	"wbc/block"
	"wbc/css"
)

// Base stylesheet with structural rules for every built-in template and the
// static responsive layout rules. Both are emitted verbatim, in fixed
// positions of the final sheet.
var (
	//go:embed base.css
	baseStylesheet string

	//go:embed responsive.css
	responsiveStylesheet string
)

// GlobalStyleContext is the theme level style input supplied by the theme
// style provider. It is consumed read-only.
type GlobalStyleContext struct {
	// BaseStylesheetText is the theme stylesheet appended after the static
	// base rules.
	BaseStylesheetText string
	// Variables are theme.json custom properties in declaration order.
	// They override properties harvested from the stylesheet's own :root.
	Variables []css.Variable
}

// AssetBundle is the aggregation result for one rendered document.
type AssetBundle struct {
	CSS     string       `json:"styles"`
	Scripts []*ScriptRef `json:"scripts"`
}

// Aggregator builds asset bundles. It holds only immutable collaborators
// and is safe to reuse across documents.
type Aggregator struct {
	parser     *css.Parser
	scripts    ScriptResolver
	viewScript func(blockType string) (string, bool)
	siteURL    string
	log        *zap.Logger
}

// NewAggregator creates an aggregator. viewScript maps a block type to its
// declared view script handle; scripts may be nil when no script resolution
// is wanted.
func NewAggregator(siteURL string, scripts ScriptResolver, viewScript func(string) (string, bool), log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	if viewScript == nil {
		viewScript = func(string) (string, bool) { return "", false }
	}
	return &Aggregator{
		parser:     css.NewParser(log),
		scripts:    scripts,
		viewScript: viewScript,
		siteURL:    siteURL,
		log:        log.Named("style"),
	}
}

// Aggregate assembles the asset bundle for a rendered document. The CSS is
// an ordered concatenation - declaration order is semantically load-bearing
// for the cascade, so fragments are collected into an ordered list and
// joined exactly once:
//
//	static base rules, theme stylesheet, :root variables,
//	per-node inline styles, static responsive rules.
func (a *Aggregator) Aggregate(ctx context.Context, nodes []*block.RenderNode, gctx *GlobalStyleContext) (*AssetBundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if gctx == nil {
		gctx = &GlobalStyleContext{}
	}

	fragments := make([]string, 0, 5)
	fragments = append(fragments, baseStylesheet)

	theme := gctx.BaseStylesheetText
	vars := gctx.Variables
	if theme != "" {
		analysis := a.parser.Analyze([]byte(theme))
		for _, w := range analysis.Warnings {
			a.log.Debug("Theme stylesheet warning", zap.String("warning", w))
		}
		// theme.json variables win over ones harvested from the stylesheet
		vars = append(analysis.Variables, gctx.Variables...)
		theme = css.RewriteURLs(theme, a.absoluteURL)
		fragments = append(fragments, theme)
	}

	if root := rootBlock(vars); root != "" {
		fragments = append(fragments, root)
	}

	if inline := collectInlineStyles(nodes); inline != "" {
		fragments = append(fragments, inline)
	}

	fragments = append(fragments, responsiveStylesheet)

	scripts, err := a.collectScripts(ctx, nodes)
	if err != nil {
		return nil, err
	}

	return &AssetBundle{
		CSS:     strings.Join(fragments, "\n"),
		Scripts: scripts,
	}, nil
}

// absoluteURL resolves relative stylesheet references against the site URL.
// Absolute and data: references stay untouched.
func (a *Aggregator) absoluteURL(ref string) string {
	if ref == "" || strings.Contains(ref, "://") || strings.HasPrefix(ref, "data:") {
		return ref
	}
	if a.siteURL == "" {
		return ref
	}
	return strings.TrimSuffix(a.siteURL, "/") + "/" + strings.TrimPrefix(ref, "/")
}

// rootBlock renders the variable list as a single :root block. Duplicate
// names collapse to the last value while keeping the first seen position,
// so override order stays predictable.
func rootBlock(vars []css.Variable) string {
	if len(vars) == 0 {
		return ""
	}

	order := make([]string, 0, len(vars))
	values := make(map[string]string, len(vars))
	for _, v := range vars {
		if _, seen := values[v.Name]; !seen {
			order = append(order, v.Name)
		}
		values[v.Name] = v.Value
	}

	var sb strings.Builder
	sb.WriteString(":root {\n")
	for _, name := range order {
		sb.WriteString("  --")
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(values[name])
		sb.WriteString(";\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}

// collectInlineStyles gathers per-node style declarations in pre-order.
// This system uses the simple aggregation variant: fragments are emitted as
// block-level style text without per-node scoping.
func collectInlineStyles(nodes []*block.RenderNode) string {
	var sb strings.Builder
	var visit func(n *block.RenderNode)
	visit = func(n *block.RenderNode) {
		for _, d := range n.InlineStyles {
			sb.WriteString(d.String())
			sb.WriteString(";\n")
		}
		for _, child := range n.Inner {
			visit(child)
		}
	}
	for _, n := range nodes {
		visit(n)
	}
	return sb.String()
}
