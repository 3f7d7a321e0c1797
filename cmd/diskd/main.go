// Command diskd serves file uploads and downloads over HTTP on top of a
// local directory or an S3-compatible bucket.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/dmitrymomot/disk/internal/config"
	"github.com/dmitrymomot/disk/internal/server"
	"github.com/dmitrymomot/disk/pkg/disk"
	"github.com/dmitrymomot/disk/pkg/logger"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "diskd:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log, logger.RequestIDExtractor())
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	d, err := disk.New(ctx, cfg.Disk, disk.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to initialize disk: %w", err)
	}

	v, err := server.NewValidator(d, cfg.Upload, log)
	if err != nil {
		return fmt.Errorf("failed to initialize upload validator: %w", err)
	}

	return server.New(d, v, log, cfg.Server).Run(ctx, logger.Flush)
}
