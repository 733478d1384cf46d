package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"

	predict "github.com/goliatone/go-predict"
	"github.com/goliatone/go-predict/internal/catalog/loader"
	"github.com/goliatone/go-predict/internal/tui"
	"github.com/goliatone/go-predict/pkg/catalog"
	"github.com/goliatone/go-predict/pkg/client"
	"github.com/goliatone/go-predict/pkg/config"
	"github.com/goliatone/go-predict/pkg/payload"
	"github.com/goliatone/go-predict/pkg/render"
	"github.com/goliatone/go-predict/pkg/session"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	base := flag.String("base", cfg.BaseURL, "prediction service base URL")
	rendererName := flag.String("renderer", cfg.Renderer, "output renderer (text or html)")
	themeName := flag.String("theme", cfg.Theme, "theme name")
	themeVariant := flag.String("variant", cfg.ThemeVariant, "theme variant")
	model := flag.String("model", "", "model key to predict with (e.g. logreg)")
	preset := flag.String("preset", "", "preset name to fill the form with")
	payloadPath := flag.String("payload", "", "JSON file merged over the form values ('-' for stdin)")
	batchPath := flag.String("batch", "", "JSON file with an array of feature rows")
	schemaPath := flag.String("schema", "", "local schema JSON file used instead of fetching GET /schema")
	output := flag.String("output", "", "output file (stdout if empty)")
	interactive := flag.Bool("interactive", false, "run the guided prompt workflow")
	health := flag.Bool("health", false, "probe the service health endpoint and exit")
	verbose := flag.Bool("verbose", cfg.Verbose, "enable debug logging")
	flag.Parse()

	cfg.BaseURL = *base
	cfg.Renderer = *rendererName
	cfg.Theme = *themeName
	cfg.ThemeVariant = *themeVariant
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := newLogger(*verbose)

	httpClient := &http.Client{Timeout: cfg.Timeout}
	clientOpts := []client.Option{
		client.WithHTTPClient(httpClient),
		client.WithLogger(logger),
	}
	if *schemaPath != "" {
		docs := loader.New(catalog.NewLoaderOptions())
		clientOpts = append(clientOpts, client.WithCatalogSource(docs, catalog.SourceFromFile(*schemaPath)))
	}
	c := client.New(cfg.BaseURL, clientOpts...)

	if *health {
		h, err := c.Health(ctx)
		if err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		fmt.Printf("Service status: %s\n", h.Status)
		return
	}

	theme, err := render.ResolveTheme(cfg.Theme, cfg.ThemeVariant)
	if err != nil {
		log.Fatalf("Failed to resolve theme: %v", err)
	}

	registry, err := predict.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to build renderers: %v", err)
	}
	renderer, err := registry.Resolve(cfg.Renderer)
	if err != nil {
		log.Fatalf("Unknown renderer %q (have: %v)", cfg.Renderer, registry.List())
	}

	sess := session.New(c, session.WithLogger(logger))

	if *interactive {
		if banner, err := c.Ping(ctx); err == nil && banner != "" {
			fmt.Println(banner)
		}
		loop := tui.NewLoop(nil, sess, renderer, theme)
		if err := loop.Run(ctx); err != nil {
			log.Fatalf("Interactive session failed: %v", err)
		}
		return
	}

	if *model == "" {
		log.Fatal("Pass -model (or -interactive); run with -health to probe the service")
	}
	kind, err := catalog.ParseKind(*model)
	if err != nil {
		log.Fatalf("Invalid model: %v", err)
	}

	if err := sess.Start(ctx); err != nil {
		log.Fatalf("Failed to fetch model catalog: %v", err)
	}
	if err := sess.SelectModel(kind); err != nil {
		log.Fatalf("Failed to select model: %v", err)
	}

	if *batchPath != "" {
		runBatch(ctx, sess, renderer, theme, logger, *batchPath, *output)
		return
	}

	if err := applyPreset(sess, *preset); err != nil {
		log.Fatalf("Failed to apply preset: %v", err)
	}

	rawOverride, err := readPayload(*payloadPath)
	if err != nil {
		log.Fatalf("Failed to read payload: %v", err)
	}

	summary, report, err := sess.Submit(ctx, rawOverride)
	if err != nil {
		log.Fatalf("Prediction failed: %v", err)
	}
	if report.HasIgnored() {
		logger.Warn("ignored unknown payload fields", "fields", report.Ignored)
	}

	out, err := renderer.Render(ctx, summary, render.Options{Theme: theme})
	if err != nil {
		log.Fatalf("Failed to render result: %v", err)
	}
	writeOutput(*output, out)
}

// applyPreset fills the form with the named preset, or the model's first
// preset when no name is given.
func applyPreset(sess *session.Session, name string) error {
	available, err := sess.Presets()
	if err != nil {
		return err
	}
	if name == "" {
		if len(available) == 0 {
			return nil
		}
		name = available[0].Name
	}
	return sess.ApplyPreset(name)
}

func runBatch(ctx context.Context, sess *session.Session, renderer render.Renderer, theme *render.ThemeConfig, logger *slog.Logger, path, output string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read batch file: %v", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		log.Fatalf("Failed to decode batch file: %v", err)
	}

	summaries, report, err := sess.SubmitBatch(ctx, rows)
	if err != nil {
		var validation *payload.ValidationError
		if errors.As(err, &validation) {
			log.Fatalf("Batch validation failed: %v", validation)
		}
		log.Fatalf("Batch prediction failed: %v", err)
	}
	if report.HasIgnored() {
		logger.Warn("ignored unknown payload fields", "fields", report.Ignored)
	}

	var combined []byte
	for _, summary := range summaries {
		out, err := renderer.Render(ctx, summary, render.Options{Theme: theme})
		if err != nil {
			log.Fatalf("Failed to render result: %v", err)
		}
		combined = append(combined, out...)
	}
	writeOutput(output, combined)
}

func readPayload(path string) ([]byte, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		return io.ReadAll(os.Stdin)
	default:
		return os.ReadFile(path)
	}
}

func writeOutput(path string, data []byte) {
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Result written to %s\n", path)
		return
	}
	fmt.Println(string(data))
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
