// Package main provides the gifposter command, which expands
// {% gif path %} directives in page sources.
//
// Usage:
//
//	gifposter [-site DIR] [-publish] [file ...]
//	gifposter [-site DIR] -image uploads/2015/08/test.gif
//
// Without files the page is read from stdin. Expanded output is written
// to stdout; logs go to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sethvargo/go-envconfig"

	"github.com/maauso/gifposter/internal/bootstrap"
	"github.com/maauso/gifposter/internal/config"
	"github.com/maauso/gifposter/internal/tag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, envconfig.OsLookuper()); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, env envconfig.Lookuper) error {
	fs := flag.NewFlagSet("gifposter", flag.ContinueOnError)
	fs.SetOutput(stderr)
	site := fs.String("site", "", "site source root (overrides SITE_ROOT)")
	image := fs.String("image", "", "render a single image reference instead of expanding pages")
	doPublish := fs.Bool("publish", false, "upload referenced posters and gifs to S3")
	if err := fs.Parse(args); err != nil {
		return err
	}

	overrides := map[string]string{}
	if *site != "" {
		overrides["SITE_ROOT"] = *site
	}
	cfg, err := config.LoadWithLookuper(envconfig.MultiLookuper(envconfig.MapLookuper(overrides), env))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := cfg.NewLoggerTo(stderr)
	deps, err := bootstrap.NewDependencies(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize dependencies: %w", err)
	}

	var assets []tag.Asset
	if *image != "" {
		res := deps.Expander.Render(ctx, *image)
		if _, err := fmt.Fprintln(stdout, res.HTML()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		if res.Err == nil {
			assets = append(assets, tag.Asset{Poster: res.Poster, Gif: res.Gif, Generated: res.Generated})
		}
	} else {
		assets, err = expandInputs(ctx, deps.Expander, fs.Args(), stdin, stdout)
		if err != nil {
			return err
		}
	}

	if !*doPublish {
		return nil
	}
	uploads, err := deps.Publisher.Publish(ctx, assets)
	logger.Info("publish finished",
		slog.Int("uploaded", len(uploads)),
		slog.Int("assets", len(assets)),
	)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// expandInputs expands each named file, or stdin when none are given,
// writing the results to out in order.
func expandInputs(ctx context.Context, e *tag.Expander, files []string, stdin io.Reader, out io.Writer) ([]tag.Asset, error) {
	var all []tag.Asset

	expand := func(r io.Reader, name string) error {
		src, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		doc, assets := e.Expand(ctx, string(src))
		all = append(all, assets...)
		if _, err := io.WriteString(out, doc); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}

	if len(files) == 0 {
		return all, expand(stdin, "stdin")
	}

	for _, name := range files {
		f, err := os.Open(name) // #nosec G304 - paths are command-line arguments
		if err != nil {
			return all, fmt.Errorf("open input: %w", err)
		}
		err = expand(f, name)
		_ = f.Close()
		if err != nil {
			return all, err
		}
	}
	return all, nil
}
