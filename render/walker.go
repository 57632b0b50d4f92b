package render

import (
	"context"
	"errors"
	"fmt"

	"wbc/block"
)

// ErrTooDeep is wrapped into the error returned when a block tree nests
// deeper than the configured bound. This is a content validation failure,
// not a crash - pathological nesting must not overflow the stack.
var ErrTooDeep = errors.New("block tree exceeds maximum nesting depth")

// Walk converts a single block tree into its render tree. Traversal is
// pre-order and left-to-right; the output tree has exactly one node per
// input node in the same order.
func (cv *Converter) Walk(ctx context.Context, b *block.Block) (*block.RenderNode, error) {
	return cv.walk(ctx, b, 1)
}

// WalkAll converts a post's top-level block list, preserving order.
func (cv *Converter) WalkAll(ctx context.Context, blocks []*block.Block) ([]*block.RenderNode, error) {
	nodes := make([]*block.RenderNode, 0, len(blocks))
	for _, b := range blocks {
		n, err := cv.walk(ctx, b, 1)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (cv *Converter) walk(ctx context.Context, b *block.Block, depth int) (*block.RenderNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if depth > cv.maxDepth {
		return nil, fmt.Errorf("%w (%d)", ErrTooDeep, cv.maxDepth)
	}

	n := cv.reg.Dispatch(ctx, b)

	for _, child := range b.Inner {
		cn, err := cv.walk(ctx, child, depth+1)
		if err != nil {
			return nil, err
		}
		n.Inner = append(n.Inner, cn)
	}
	n.InnerCount = len(n.Inner)
	n.HasInner = n.InnerCount > 0
	return n, nil
}
