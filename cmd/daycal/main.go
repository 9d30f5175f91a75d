package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"daycal/internal/config"
	"daycal/internal/daydata"
	"daycal/internal/ics"
	appLog "daycal/internal/log"
	"daycal/internal/model"
	"daycal/internal/overview"
	"daycal/internal/relative"
	"daycal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string

	exportPath  string
	outDir      string
	public      bool
	observances bool
	school      bool
	regions     *string
	check       bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.Configure(conf.LogLevel, conf.LogFormat)
	defer appLog.Sync()

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if flags.exportPath != "" {
		if err := runExport(ctx, conf, flags); err != nil {
			appLog.Error("export failed", err, "bundle", flags.exportPath)
			appLog.Sync()
			os.Exit(1)
		}
		return
	}

	if err := runServer(ctx, conf); err != nil {
		appLog.Error("server failed", err)
		appLog.Sync()
		os.Exit(1)
	}
	appLog.Info("daycal exiting")
}

func runServer(ctx context.Context, conf *config.Config) error {
	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"locale", conf.Locale,
		"data_dir", conf.Data.Dir,
		"source_url", conf.Data.SourceURL,
		"prefetch", conf.Data.PrefetchCron,
		"regions", len(conf.Regions),
	)

	patterns, err := relative.Load(conf.Locale)
	if err != nil {
		return err
	}
	loc := web.ResolveLocationOrLocal(conf.Timezone)

	store := daydata.NewStore(newFetcher(conf))
	prefetcher := daydata.NewPrefetcher(store, conf.Data.PrefetchCron, loc)
	prefetcher.Start(ctx)
	defer prefetcher.Stop()

	view := overview.New(store, relative.New(patterns),
		overview.WithLocation(loc),
		overview.WithRegions(conf.Regions),
	)
	srv := web.NewServer(conf, store, view, newExporter(conf, false))
	return srv.ListenAndServe(ctx)
}

func runExport(ctx context.Context, conf *config.Config, flags flagConfig) error {
	body, err := os.ReadFile(flags.exportPath)
	if err != nil {
		return err
	}
	var bundle model.Bundle
	if err := json.Unmarshal(body, &bundle); err != nil {
		return fmt.Errorf("decode bundle: %w", err)
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(bundle); err != nil {
		return fmt.Errorf("invalid bundle: %w", err)
	}
	if len(bundle.Regions) == 0 {
		bundle.Regions = conf.RegionList()
	}

	filter := ics.Filter{
		Public:      flags.public,
		Observances: flags.observances,
		School:      flags.school,
	}
	if flags.regions != nil {
		filter.Regions = splitRegions(*flags.regions)
	}

	outDir := flags.outDir
	if outDir == "" {
		outDir = conf.Export.OutDir
	}
	var saver ics.Saver = ics.FileSaver{Dir: outDir}
	if flags.check {
		saver = discardSaver{}
	}

	res, err := newExporter(conf, flags.check).Export(ctx, bundle, filter, saver)
	if err != nil {
		return err
	}
	if res.Skipped {
		appLog.Info("nothing to export", "public", flags.public, "observances", flags.observances, "school", flags.school)
		return nil
	}
	appLog.Info("export written", "file", res.Filename, "events", res.Events, "bytes", res.Bytes, "checked_only", flags.check)
	return nil
}

func newFetcher(conf *config.Config) daydata.Fetcher {
	if conf.Data.SourceURL != "" {
		appLog.Info("day data source", "url", conf.Data.SourceURL)
		return daydata.NewHTTPFetcher(conf.Data.SourceURL)
	}
	f := daydata.NewDirFetcher(conf.Data.Dir)
	appLog.Info("day data source", "dir", f.Dir())
	return f
}

func newExporter(conf *config.Config, forceVerify bool) *ics.Exporter {
	return &ics.Exporter{
		Defaults: ics.Calendar{Name: conf.Export.CalendarName, Domain: conf.Export.Domain},
		Filename: conf.Export.Filename,
		Verify:   conf.Export.Verify || forceVerify,
	}
}

// discardSaver drops the document; -check only wants verification.
type discardSaver struct{}

func (discardSaver) Save(context.Context, ics.Download) error { return nil }

// splitRegions parses "-regions a,b". An empty value selects no region.
func splitRegions(v string) []string {
	out := []string{}
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.exportPath, "export", "", "Export the bundle JSON at this path to .ics and exit")
	flag.StringVar(&cfg.outDir, "out", "", "Output directory for -export (default export.out_dir)")
	flag.BoolVar(&cfg.public, "public", true, "Include public holidays in -export")
	flag.BoolVar(&cfg.observances, "observances", false, "Include observances in -export")
	flag.BoolVar(&cfg.school, "school", false, "Include school holidays in -export")
	regions := flag.String("regions", "", "Comma-separated school-holiday regions (default: all referenced)")
	flag.BoolVar(&cfg.check, "check", false, "Verify the generated calendar without writing it")

	flag.Parse()

	// -regions distinguishes "not given" (all regions) from "given empty".
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "regions" {
			cfg.regions = regions
		}
	})
	return cfg
}
