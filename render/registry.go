package render

import (
	"context"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"wbc/block"
)

// Handler turns a single block into its render node. Children are attached
// by the walker, handlers only fill the node's own fields.
type Handler func(ctx context.Context, b *block.Block) *block.RenderNode

// TypeInfo describes a registered block type for the type listing surface
// and carries the optional view script handle used by the asset aggregator.
type TypeInfo struct {
	Name        string         `json:"name"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Attributes  map[string]any `json:"attributes"`
	Supports    map[string]any `json:"supports"`
	Category    string         `json:"category"`
	Keywords    []string       `json:"keywords"`

	ViewScript string `json:"-"`
}

// Registry maps block type names to handlers. At most one handler exists per
// type, the last registration wins. Dispatch never fails - unknown types go
// through the generic fallback.
type Registry struct {
	handlers map[string]Handler
	types    map[string]TypeInfo
	fallback Handler
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{
		handlers: make(map[string]Handler),
		types:    make(map[string]TypeInfo),
		log:      log.Named("registry"),
	}
	r.fallback = r.generic
	return r
}

// Register stores the handler for a block type, overwriting any previous one.
func (r *Registry) Register(name string, h Handler, info TypeInfo) {
	if _, exists := r.handlers[name]; exists {
		r.log.Debug("Overriding block handler", zap.String("type", name))
	}
	r.handlers[name] = h
	info.Name = name
	r.types[name] = info
}

// Dispatch resolves and invokes the handler for the block's type. Unknown
// types are rendered by the fallback handler and keep their original name.
func (r *Registry) Dispatch(ctx context.Context, b *block.Block) *block.RenderNode {
	if h, ok := r.handlers[b.Name]; ok {
		return h(ctx, b)
	}
	r.log.Debug("No handler for block type, using fallback", zap.String("type", b.Name))
	return r.fallback(ctx, b)
}

// Known reports whether a dedicated handler is registered for the type.
func (r *Registry) Known(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// ViewScript returns the view script handle declared by the block type, if any.
func (r *Registry) ViewScript(name string) (string, bool) {
	info, ok := r.types[name]
	if !ok || info.ViewScript == "" {
		return "", false
	}
	return info.ViewScript, true
}

// Types returns registered type descriptors keyed by name.
func (r *Registry) Types() map[string]TypeInfo {
	out := make(map[string]TypeInfo, len(r.types))
	for name, info := range r.types {
		out[name] = info
	}
	return out
}

// TypeNames returns registered type names in natural order, so
// "core/heading" sorts before "core/list-item" and numbered custom types
// order the way a human expects.
func (r *Registry) TypeNames() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

// generic is the universal fallback: it preserves the attribute bag verbatim
// and derives classes from the type name so the downstream template can still
// target the block.
func (r *Registry) generic(_ context.Context, b *block.Block) *block.RenderNode {
	n := block.NewRenderNode("generic", "generic", b.Name)
	n.Content = b.InnerHTML
	n.AddClass(strings.ReplaceAll(b.Name, "/", "-"))
	n.AddClass(strings.Fields(b.StringAttr("className", ""))...)
	if align := b.StringAttr("align", ""); align != "" {
		n.AddClass("align" + align)
	}
	n.Data["attributes"] = deepCopyMap(b.Attrs)
	return n
}

// deepCopyMap clones an attribute bag including nested objects and arrays so
// the render node never aliases caller owned state.
func deepCopyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return deepCopyMap(tv)
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}
