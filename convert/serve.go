package convert

import (
	"context"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"wbc/server"
	"wbc/state"
)

// Serve is the "serve" command action: expose the pipeline over the
// /wp-blocks/v1 REST surface until interrupted.
func Serve(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log

	pipeline, err := NewPipeline(env)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, pipeline.Close())
	}()

	ttl := time.Duration(env.Cfg.Server.CacheTTL) * time.Second
	srv := server.New(env.Cfg.Server.Address,
		pipeline.Source, pipeline.Converter, pipeline.Aggregator, pipeline.Theme,
		ttl, log)

	log.Info("Starting API service",
		zap.String("address", env.Cfg.Server.Address),
		zap.Duration("cache_ttl", ttl))
	return srv.Run(ctx)
}
