package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"

	"github.com/crimson-sun/pathobridge/internal/config"
	"github.com/crimson-sun/pathobridge/internal/logging"
	"github.com/crimson-sun/pathobridge/internal/notify"
	"github.com/crimson-sun/pathobridge/internal/pipeline"
	"github.com/crimson-sun/pathobridge/internal/stage"

	// Register enrichment providers and stages.
	_ "github.com/crimson-sun/pathobridge/internal/enrichment/enrichr"
	_ "github.com/crimson-sun/pathobridge/internal/stage/bridging"
	_ "github.com/crimson-sun/pathobridge/internal/stage/hostresponse"
	_ "github.com/crimson-sun/pathobridge/internal/stage/metabolism"
	_ "github.com/crimson-sun/pathobridge/internal/stage/predict"
	_ "github.com/crimson-sun/pathobridge/internal/stage/synthesis"
)

var descriptions = map[string]string{
	"host-response": "Classify DGE results, draw the volcano plot and run ORA and GSEA",
	"metabolism":    "Compare strain metabolite repertoires and write Table S3",
	"bridging":      "Link pathogen-specific metabolites to significant host genes (Table S4)",
	"predict":       "Train the immunomodulatory classifier and score candidates (Table S5)",
	"synthesis":     "Rank candidate metabolites by combined evidence (Table S6)",
}

func main() {
	os.Exit(run())
}

func run() int {
	app := kingpin.New("pathobridge", "Link pathogen metabolites to the host inflammatory response")
	app.Version("v0.1")
	rootFlag := app.Flag("root", "result tree root (default $PATHOBRIDGE_ROOT or .)").Default("").String()
	formatFlag := app.Flag("format", "additional table format: parquet, xlsx or stdout").Strings()
	progressFlag := app.Flag("progress", "show progress bars").Default("false").Bool()
	var seedSet bool
	seedFlag := app.Flag("seed", "random seed (default $PATHOBRIDGE_SEED or 42)").IsSetByUser(&seedSet).Uint64()

	app.Command("run", "Run every stage in order and write the run manifest")
	for _, name := range pipeline.DefaultOrder {
		app.Command(name, descriptions[name])
	}
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg := config.Load()
	if *rootFlag != "" {
		cfg = config.LoadRoot(*rootFlag)
	}
	cfg.Output.TableFormats = append(cfg.Output.TableFormats, *formatFlag...)
	if *progressFlag {
		cfg.Output.Progress = true
	}
	if seedSet {
		cfg.Seed = *seedFlag
	}
	logging.Init(cfg.Output.LogFormat, logging.ParseLevel(cfg.Output.LogLevel))
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "pathobridge: %v\n", err)
		return 1
	}

	env := stage.NewEnv(cfg, stage.OpenTables(cfg))
	names := []string{cmd}
	var opts []pipeline.Option
	if cmd == "run" {
		names = pipeline.DefaultOrder
		opts = append(opts, pipeline.WithManifest(cfg.Paths.Manifest))
		if cfg.Output.WebhookURL != "" {
			opts = append(opts, pipeline.WithNotifier(notify.New(cfg.Output.WebhookURL)))
		}
	}
	stages, err := pipeline.Resolve(env, names)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pathobridge: %v\n", err)
		return 1
	}
	p := pipeline.New(env, stages, opts...)

	// Set up graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "\nreceived %v, shutting down...\n", sig)
		cancel()
	}()

	slog.Info("pathobridge starting", "command", cmd, "root", cfg.Paths.Root)
	_, err = p.Run(ctx)
	err = errors.Join(err, p.Close())
	if err != nil {
		fmt.Fprintf(os.Stderr, "pathobridge: %v\n", err)
		if hint := stage.Hint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		return 1
	}
	return 0
}
