package style

import (
	"context"

	"go.uber.org/zap"

	"wbc/block"
)

// ScriptRef is one entry of the view script manifest.
type ScriptRef struct {
	Handle       string   `json:"handle"`
	SourceURL    string   `json:"src"`
	Content      string   `json:"content,omitempty"`
	Dependencies []string `json:"deps"`
}

// ScriptResolver maps a script handle to its source URL, dependency list
// and, when readable, file contents. An unreadable file is not an error -
// the resolver returns the reference with Content left empty.
type ScriptResolver interface {
	Resolve(ctx context.Context, handle string) (*ScriptRef, error)
}

// collectScripts walks the render tree in pre-order and resolves the view
// script of every distinct block type that declares one. Deduplication is
// by handle, first seen order is preserved.
func (a *Aggregator) collectScripts(ctx context.Context, nodes []*block.RenderNode) ([]*ScriptRef, error) {
	handles := make([]string, 0, 4)
	seen := make(map[string]bool)

	var visit func(n *block.RenderNode)
	visit = func(n *block.RenderNode) {
		if handle, ok := a.viewScript(n.SourceName); ok && !seen[handle] {
			seen[handle] = true
			handles = append(handles, handle)
		}
		for _, child := range n.Inner {
			visit(child)
		}
	}
	for _, n := range nodes {
		visit(n)
	}

	scripts := make([]*ScriptRef, 0, len(handles))
	for _, handle := range handles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if a.scripts == nil {
			scripts = append(scripts, &ScriptRef{Handle: handle, Dependencies: []string{}})
			continue
		}
		ref, err := a.scripts.Resolve(ctx, handle)
		if err != nil || ref == nil {
			// degrade to bare metadata, script loading is not fatal
			a.log.Debug("Unable to resolve view script", zap.String("handle", handle), zap.Error(err))
			ref = &ScriptRef{Handle: handle}
		}
		if ref.Dependencies == nil {
			ref.Dependencies = []string{}
		}
		scripts = append(scripts, ref)
	}
	return scripts, nil
}
