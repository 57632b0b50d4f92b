// Package convert wires the conversion pipeline together and carries the
// command line actions that drive it.
package convert

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"wbc/config"
	"wbc/media"
	"wbc/render"
	"wbc/source"
	"wbc/state"
	"wbc/style"
)

// Pipeline bundles the collaborators one conversion run needs. Build it per
// command, close it when done.
type Pipeline struct {
	Source     source.ContentSource
	Converter  *render.Converter
	Aggregator *style.Aggregator
	Theme      source.ThemeStyleProvider

	store *media.Store
}

// NewPipeline assembles the pipeline from the active configuration. The
// media store is attached only when its database file already exists, a
// missing catalog degrades media lookups instead of failing the run.
func NewPipeline(env *state.LocalEnv) (*Pipeline, error) {
	cfg := env.Cfg
	log := env.Log

	var (
		content source.ContentSource
		err     error
	)
	switch cfg.Content.Source {
	case config.SourceKindWXR:
		content, err = source.NewWXRSource(cfg.Content.Path, log)
		if err != nil {
			return nil, fmt.Errorf("unable to open content export: %w", err)
		}
	default:
		content = source.NewDirSource(cfg.Content.Path, log)
	}

	p := &Pipeline{Source: content}

	var resolver render.MediaResolver
	if _, err := os.Stat(cfg.Media.DatabasePath); err == nil {
		p.store, err = media.Open(cfg.Media.DatabasePath, log)
		if err != nil {
			return nil, err
		}
		resolver = p.store
	} else {
		log.Debug("No media catalog, attachment lookups will come back empty",
			zap.String("path", cfg.Media.DatabasePath))
	}

	p.Converter = render.New(cfg.Site.CanonicalURL, resolver, cfg.Render.MaxDepth, log)

	var scripts style.ScriptResolver
	if cfg.Theme.ScriptsDir != "" {
		scripts = source.NewDirScriptResolver(cfg.Theme.ScriptsDir, cfg.Site.CanonicalURL+"/assets", log)
	}
	p.Aggregator = style.NewAggregator(cfg.Site.CanonicalURL, scripts, p.Converter.Registry().ViewScript, log)

	if cfg.Theme.StylesheetPath != "" || cfg.Theme.VariablesPath != "" {
		p.Theme = source.NewFileThemeProvider(cfg.Theme.StylesheetPath, cfg.Theme.VariablesPath, log)
	}
	return p, nil
}

func (p *Pipeline) Close() (err error) {
	if p.store != nil {
		if cerr := p.store.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close media store: %w", cerr))
		}
	}
	return
}
