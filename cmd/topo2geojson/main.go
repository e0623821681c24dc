package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/topo2geojson/internal/config"
	"github.com/woozymasta/topo2geojson/internal/logger"
	"github.com/woozymasta/topo2geojson/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string        `short:"c" long:"config"  env:"CONFIG_FILE"   description:"Path to batch configuration file, overrides --in and --out"`
	Input      string        `short:"i" long:"in"      env:"TOPO_INPUT"    description:"TopoJSON file path or URL"           default:"topo.json"`
	Output     string        `short:"o" long:"out"     env:"OUTPUT_DIR"    description:"Output directory"                    default:"data"`
	Limit      []string      `short:"l" long:"limit"   env:"LIMIT_NAMES"   env-delim:"," description:"Limit to specific object keys (topology names with --config)"`
	Timeout    time.Duration `short:"t" long:"timeout" env:"HTTP_TIMEOUT"  description:"Timeout for remote inputs"         default:"30s"`
	Compact    bool          `long:"compact"  description:"Write minified GeoJSON instead of indented"`
	Dedup      bool          `long:"dedup"    description:"Remove consecutive duplicate positions from polygon rings"`
	BBox       bool          `long:"bbox"     description:"Add a bbox member to every feature collection"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	jobs, err := buildJobs(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := &http.Client{Timeout: opts.Timeout}

	log.Info().
		Int("jobs", len(jobs)).
		Msg("Starting conversion")

	files := 0
	for _, job := range jobs {
		res, err := processor.Convert(ctx, client, job)
		if err != nil {
			log.Fatal().
				Err(err).
				Str("job", job.Name).
				Int("written", len(res.Files)).
				Msg("Conversion failed")
		}
		files += len(res.Files)
	}

	log.Info().
		Int("files", files).
		Msg("Conversion finished successfully")
}

// buildJobs returns the jobs from the config file when one is given, or a
// single job from the command line otherwise.
func buildJobs(opts Options) ([]processor.Job, error) {
	if opts.ConfigFile == "" {
		return []processor.Job{{
			Name:      opts.Input,
			Input:     opts.Input,
			OutputDir: opts.Output,
			Objects:   opts.Limit,
			Compact:   opts.Compact,
			Dedup:     opts.Dedup,
			BBox:      opts.BBox,
		}}, nil
	}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	jobs := cfg.Jobs()
	for i := range jobs {
		jobs[i].Compact = jobs[i].Compact || opts.Compact
		jobs[i].Dedup = jobs[i].Dedup || opts.Dedup
		jobs[i].BBox = jobs[i].BBox || opts.BBox
	}

	return filterJobs(jobs, opts.Limit), nil
}

// filterJobs keeps the named jobs in the order given. Unknown names are
// logged and skipped.
func filterJobs(jobs []processor.Job, limit []string) []processor.Job {
	if len(limit) == 0 {
		return jobs
	}

	available := make(map[string]processor.Job, len(jobs))
	for _, j := range jobs {
		available[j.Name] = j
	}

	filtered := make([]processor.Job, 0, len(limit))
	seen := make(map[string]bool)

	for _, name := range limit {
		if seen[name] {
			continue
		}
		seen[name] = true

		if j, ok := available[name]; ok {
			filtered = append(filtered, j)
		} else {
			log.Error().
				Str("name", name).
				Msg("Topology specified in --limit not found in configuration")
		}
	}

	return filtered
}
