package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"google.golang.org/genai"

	"praxis"
	"praxis/collect"
	"praxis/config"
	"praxis/etree"
	"praxis/extract"
	"praxis/fs"
	"praxis/gemini"
	"praxis/goquery"
	praxishttp "praxis/http"
	"praxis/llm"
	"praxis/pipeline"
	praxislog "praxis/slog"
	"praxis/sqlite"
	"praxis/trafilatura"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Configuration file path. Set before calling Run().
	ConfigPath string

	// SQLite database used for the unit archive and run history.
	DB *sqlite.DB

	// Services for end-to-end testing.
	Runner *pipeline.Runner
	Runs   praxis.RunService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		ConfigPath: defaultConfigPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("praxis"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'praxis --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(m.ConfigPath)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Set PRAXIS_CONFIG to use a different configuration file")
		return fmt.Errorf("failed to load configuration from %q: %w", m.ConfigPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	deps.Config = cfg

	logger := slog.New(slog.NewTextHandler(stderr, nil))
	deps.Logger = logger

	m.DB = sqlite.NewDB(cfg.DBPath)
	if err := m.DB.Open(); err != nil {
		return fmt.Errorf("failed to open database at %q: %w", cfg.DBPath, err)
	}
	defer m.Close()

	m.Runs = sqlite.NewRunHistory(m.DB)
	deps.Runs = m.Runs

	if cmd == "run" {
		fetcher := praxishttp.NewFetcher()
		sources := map[string]praxis.Source{
			"forum":   praxislog.NewLoggingSource(goquery.NewSource(fetcher), logger),
			"feed":    praxislog.NewLoggingSource(etree.NewSource(fetcher), logger),
			"article": praxislog.NewLoggingSource(trafilatura.NewSource(fetcher), logger),
		}

		delay := time.Duration(cfg.Scraping.DelaySeconds * float64(time.Second))

		m.Runner = &pipeline.Runner{
			Sources:          sources,
			Limiter:          collect.NewIntervalLimiter(delay),
			Store:            fs.NewStore(cfg.OutputDir),
			Archive:          sqlite.NewArchiveService(m.DB),
			Runs:             m.Runs,
			Logger:           logger,
			Limits:           cfg.BatchLimits(),
			QualityThreshold: cfg.LLM.Threshold,
			RelevanceFloor:   cfg.RelevanceFloor,
			MergeThreshold:   cfg.MergeThreshold,
			MaxUnits:         cfg.Scraping.MaxPosts,
			Concurrency:      cfg.LLM.Concurrency,
		}

		// A dry run never reaches the model, so the provider (and its
		// API key) is only required for a real run.
		if !cli.Run.DryRun {
			completer, err := newCompleter(ctx, cfg, logger)
			if err != nil {
				return err
			}
			m.Runner.Classifier = extract.NewClassifier(completer, logger)
			m.Runner.Extractor = extract.NewExtractor(completer, logger)
			m.Runner.Scorer = extract.NewScorer(completer, cfg.Weights)
		}
		deps.Runner = m.Runner
	}

	return kongCtx.Run(deps)
}

// newCompleter builds the configured LLM provider. Gemini needs an API
// key; the local providers need a reachable endpoint.
func newCompleter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (praxis.Completer, error) {
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.LLM.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		return gemini.NewCompleter(client, cfg.LLM.Model,
			gemini.WithLogger(logger),
			gemini.WithConcurrency(cfg.LLM.Concurrency)), nil
	case config.ProviderOllama:
		return llm.NewClient(llm.Ollama(cfg.LLM.BaseURL), cfg.LLM.Model,
			llm.WithLogger(logger),
			llm.WithConcurrency(cfg.LLM.Concurrency)), nil
	case config.ProviderLMStudio:
		return llm.NewClient(llm.LMStudio(cfg.LLM.BaseURL), cfg.LLM.Model,
			llm.WithLogger(logger),
			llm.WithConcurrency(cfg.LLM.Concurrency)), nil
	}
	return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
}

func defaultConfigPath() string {
	if path := os.Getenv("PRAXIS_CONFIG"); path != "" {
		return path
	}
	return "praxis.yaml"
}
