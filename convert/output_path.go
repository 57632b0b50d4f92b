package convert

import (
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"wbc/config"
	"wbc/source"
	"wbc/state"
)

// buildOutputBase returns the extension-less output path for one rendered
// post: either the expanded output name template or the bare post ID, always
// cleaned up for the filesystem.
func buildOutputBase(post *source.Post, dst string, env *state.LocalEnv) string {
	name := strconv.Itoa(post.ID)

	if field := env.Cfg.Render.OutputNameTemplate; field != "" {
		expanded, err := expandTemplate("output_name", field, post)
		if err != nil {
			env.Log.Warn("Unable to prepare output filename, falling back to post id", zap.Error(err))
		} else if expanded != "" {
			name = expanded
		}
	}
	return filepath.Join(dst, config.CleanFileName(name))
}
