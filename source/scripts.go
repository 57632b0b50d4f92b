package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"wbc/style"
)

// scriptDeps is the dependency list per known view script handle. Handles
// outside the table resolve with no dependencies.
var scriptDeps = map[string][]string{
	"wp-block-gallery-view":   {"wp-dom-ready"},
	"wp-block-file-view":      {},
	"custom-testimonial-view": {"wp-dom-ready"},
}

// DirScriptResolver resolves view script handles against a directory of
// "{handle}.js" files. The source URL is built from the public base URL
// regardless of whether the file is readable, only Content depends on it.
type DirScriptResolver struct {
	dir     string
	baseURL string
	log     *zap.Logger
}

func NewDirScriptResolver(dir, baseURL string, log *zap.Logger) *DirScriptResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &DirScriptResolver{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/"), log: log.Named("scripts")}
}

func (r *DirScriptResolver) Resolve(ctx context.Context, handle string) (*style.ScriptRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ref := &style.ScriptRef{
		Handle:       handle,
		SourceURL:    fmt.Sprintf("%s/%s.js", r.baseURL, handle),
		Dependencies: append([]string{}, scriptDeps[handle]...),
	}

	data, err := os.ReadFile(filepath.Join(r.dir, handle+".js"))
	if err != nil {
		// metadata still ships, only inlined content is lost
		r.log.Debug("View script file not readable", zap.String("handle", handle), zap.Error(err))
		return ref, nil
	}
	ref.Content = string(data)
	return ref, nil
}
