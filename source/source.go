// Package source defines the collaborators the conversion pipeline consumes
// content through, and ships filesystem backed implementations of them.
package source

import (
	"context"
	"errors"

	"wbc/block"
)

// Post is one content item delivered by a content source. The block tree is
// built once and treated as read-only downstream.
type Post struct {
	ID     int
	Title  string
	Blocks []*block.Block
}

// ErrPostNotFound reports an unknown content identifier. Surfaced to API
// clients as the "post_not_found" error code.
var ErrPostNotFound = errors.New("post not found")

// ErrFetch reports that the content source itself failed. Surfaced to API
// clients as the "fetch_error" error code. The pipeline is never invoked on
// absent input - a failed fetch never yields a partial render.
var ErrFetch = errors.New("content fetch failure")

// ContentSource delivers parsed block trees by post ID.
type ContentSource interface {
	// PostByID returns the post or an error wrapping ErrPostNotFound /
	// ErrFetch.
	PostByID(ctx context.Context, id int) (*Post, error)
	// PostIDs lists available post IDs in ascending order.
	PostIDs(ctx context.Context) ([]int, error)
}
