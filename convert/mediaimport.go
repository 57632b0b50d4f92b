package convert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"wbc/media"
	"wbc/state"
)

// ImportMedia is the "media import" command action: scan an uploads
// directory into the attachment catalog, deriving image size variants.
func ImportMedia(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no uploads directory has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	baseURL := env.Cfg.Media.UploadsURL
	if baseURL == "" {
		baseURL = strings.TrimSuffix(env.Cfg.Site.CanonicalURL, "/") + "/wp-content/uploads"
	}

	store, err := media.Open(env.Cfg.Media.DatabasePath, log)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	stats, err := store.ImportUploads(ctx, media.ImportOptions{
		UploadsDir: src,
		BaseURL:    baseURL,
	})
	if err != nil {
		return fmt.Errorf("media import failed: %w", err)
	}

	log.Info("Media catalog updated",
		zap.String("database", env.Cfg.Media.DatabasePath),
		zap.Int("imported", stats.Imported),
		zap.Int("skipped", stats.Skipped))
	return nil
}
