// Package block defines the parsed Gutenberg block tree and the normalized
// render model the conversion pipeline produces from it.
package block

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Block is a single node of the source content tree. Trees are built once by
// a content source and treated as read-only by the pipeline.
type Block struct {
	Name      string         // block type, e.g. "core/paragraph"
	Attrs     map[string]any // attribute bag, never nil after parsing
	InnerHTML string         // raw inline markup
	Inner     []*Block       // ordered children
}

// StyleDecl is a single inline style declaration. On the wire it is a full
// "property: value" fragment, matching the aggregator's concatenation model.
type StyleDecl struct {
	Property string
	Value    string
}

func (d StyleDecl) String() string {
	return d.Property + ": " + d.Value
}

func (d StyleDecl) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *StyleDecl) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	prop, val, found := strings.Cut(s, ":")
	if !found {
		return fmt.Errorf("malformed style declaration %q", s)
	}
	d.Property = strings.TrimSpace(prop)
	d.Value = strings.TrimSpace(val)
	return nil
}

// RenderNode is the per-block output of the conversion pipeline. The tree of
// render nodes mirrors the source block tree exactly.
type RenderNode struct {
	Kind         string          `json:"type"`
	Content      string          `json:"content"`
	Classes      []string        `json:"classes"`
	InlineStyles []StyleDecl     `json:"inline_styles"`
	Template     string          `json:"xenforo_template"`
	Data         map[string]any  `json:"xenforo_data"`
	Inner        []*RenderNode   `json:"inner_blocks"`
	SourceName   string          `json:"original_block_name"`
	HasInner     bool            `json:"has_inner_blocks"`
	InnerCount   int             `json:"inner_blocks_count"`
}

// NewRenderNode creates a node with all collections allocated so JSON output
// carries empty arrays and objects instead of nulls.
func NewRenderNode(kind, template, sourceName string) *RenderNode {
	return &RenderNode{
		Kind:         kind,
		Classes:      []string{},
		InlineStyles: []StyleDecl{},
		Template:     template,
		Data:         map[string]any{},
		Inner:        []*RenderNode{},
		SourceName:   sourceName,
	}
}

// AddClass appends classes preserving order. Empty strings are dropped, the
// class list never contains them.
func (n *RenderNode) AddClass(classes ...string) {
	for _, c := range classes {
		if c == "" {
			continue
		}
		n.Classes = append(n.Classes, c)
	}
}

// AddStyle appends an inline style declaration. Declaration order is
// load-bearing for the downstream cascade, so callers emit preset-derived
// declarations before custom overrides.
func (n *RenderNode) AddStyle(property, value string) {
	if property == "" || value == "" {
		return
	}
	n.InlineStyles = append(n.InlineStyles, StyleDecl{Property: property, Value: value})
}

// NodeCount returns the number of nodes in the render tree rooted at n.
func (n *RenderNode) NodeCount() int {
	count := 1
	for _, child := range n.Inner {
		count += child.NodeCount()
	}
	return count
}
