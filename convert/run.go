package convert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"wbc/block"
	"wbc/config"
	"wbc/state"
	"wbc/style"
)

// renderedDoc is the on-disk render model written next to the assembled CSS.
type renderedDoc struct {
	PostID    int                 `json:"post_id"`
	PostTitle string              `json:"post_title"`
	Blocks    []*block.RenderNode `json:"blocks"`
	Scripts   []*style.ScriptRef  `json:"scripts"`
}

// Run is the "render" command action: convert post(s) from SOURCE into
// render model JSON plus assembled stylesheet files under DESTINATION.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	src := cmd.Args().Get(0)
	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	if err = os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("unable to create destination %s: %w", dst, err)
	}

	env.Overwrite = cmd.Bool("overwrite")

	only, err := applySourceOverride(src, env, log)
	if err != nil {
		return err
	}

	pipeline, err := NewPipeline(env)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, pipeline.Close())
	}()

	ids := only
	if len(ids) == 0 {
		if ids, err = pipeline.Source.PostIDs(ctx); err != nil {
			return err
		}
	}
	if len(ids) == 0 {
		return errors.New("no posts found in content source")
	}

	gctx := &style.GlobalStyleContext{}
	if pipeline.Theme != nil {
		if gctx, err = pipeline.Theme.GlobalStyles(ctx); err != nil {
			return err
		}
	}

	log.Info("Processing starting", zap.String("source", env.Cfg.Content.Path), zap.String("destination", dst), zap.Int("posts", len(ids)))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := renderOne(ctx, pipeline, id, dst, gctx, env, log); err != nil {
			return err
		}
	}
	return nil
}

// renderOne runs the pipeline for a single post and writes its render model
// and stylesheet files.
func renderOne(ctx context.Context, p *Pipeline, id int, dst string, gctx *style.GlobalStyleContext, env *state.LocalEnv, log *zap.Logger) error {
	post, err := p.Source.PostByID(ctx, id)
	if err != nil {
		return err
	}

	nodes, err := p.Converter.WalkAll(ctx, post.Blocks)
	if err != nil {
		return fmt.Errorf("unable to render post %d: %w", id, err)
	}

	bundle, err := p.Aggregator.Aggregate(ctx, nodes, gctx)
	if err != nil {
		return fmt.Errorf("unable to aggregate assets for post %d: %w", id, err)
	}

	doc := renderedDoc{
		PostID:    post.ID,
		PostTitle: post.Title,
		Blocks:    nodes,
		Scripts:   bundle.Scripts,
	}
	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode render model for post %d: %w", id, err)
	}

	base := buildOutputBase(post, dst, env)
	if err := writeOutput(base+".json", data, env.Overwrite); err != nil {
		return err
	}
	if err := writeOutput(base+".css", []byte(bundle.CSS), env.Overwrite); err != nil {
		return err
	}

	log.Info("Rendered post",
		zap.Int("id", post.ID),
		zap.String("title", post.Title),
		zap.Int("blocks", len(nodes)),
		zap.String("output", base))
	return nil
}

// applySourceOverride points the configured content source at the SOURCE
// argument when one was given. A single "{id}.json" fixture narrows the run
// to that post and the returned slice carries its id.
func applySourceOverride(src string, env *state.LocalEnv, log *zap.Logger) ([]int, error) {
	if len(src) == 0 {
		return nil, nil // configuration stands
	}

	abs, err := filepath.Abs(src)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("input source was not found (%s): %w", src, err)
	}

	cfg := env.Cfg
	switch {
	case fi.IsDir():
		cfg.Content.Source = config.SourceKindDir
		cfg.Content.Path = abs
		return nil, nil

	case strings.EqualFold(filepath.Ext(abs), ".xml") || strings.EqualFold(filepath.Ext(abs), ".wxr"):
		cfg.Content.Source = config.SourceKindWXR
		cfg.Content.Path = abs
		return nil, nil

	case strings.EqualFold(filepath.Ext(abs), ".json"):
		id, err := strconv.Atoi(strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)))
		if err != nil {
			return nil, fmt.Errorf("fixture name %s does not carry a post id", filepath.Base(abs))
		}
		cfg.Content.Source = config.SourceKindDir
		cfg.Content.Path = filepath.Dir(abs)
		log.Debug("Rendering single fixture", zap.Int("id", id))
		return []int{id}, nil

	default:
		return nil, fmt.Errorf("unsupported input source (%s)", src)
	}
}

// writeOutput writes one output file, refusing to clobber existing files
// unless overwrite was requested.
func writeOutput(path string, data []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("destination already exists (%s), use overwrite to replace it", path)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	return nil
}
