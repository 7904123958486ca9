package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/career-copilot/internal/capability/gemini"
	"github.com/spigell/career-copilot/internal/costguard"
	"github.com/spigell/career-copilot/internal/eligibility"
	"github.com/spigell/career-copilot/internal/ingest"
	"github.com/spigell/career-copilot/internal/job"
	"github.com/spigell/career-copilot/internal/logger"
	"github.com/spigell/career-copilot/internal/match"
	"github.com/spigell/career-copilot/internal/pipeline"
	"github.com/spigell/career-copilot/internal/report"
	"github.com/spigell/career-copilot/internal/salary"
	"github.com/spigell/career-copilot/internal/secrets"
	"github.com/spigell/career-copilot/internal/seen"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"

	defaultRedisTTLHours = 14 * 24
)

var errDeclined = errors.New("run declined from prompt")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the matching pipeline once over the configured source",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before spending paid capability calls")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the career-copilot", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	autoApprove := cmd.Flag("auto-approve").Value.String() == "true"

	if err := runOnce(ctx, config, logger, autoApprove); err != nil {
		if errors.Is(err, errDeclined) {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
		logger.Fatal("run failed", zap.Error(err))
	}
}

// runOnce executes one full batch: ingest, confirm, process, persist. It is
// shared by the run and watch commands.
func runOnce(ctx context.Context, config *Config, logger *zap.Logger, autoApprove bool) error {
	if err := validateConfig(config); err != nil {
		return err
	}

	resume, err := job.LoadResume(config.Resume.File, config.Resume.Skills)
	if err != nil {
		return fmt.Errorf("loading resume: %w", err)
	}

	source, err := buildSource(config, logger)
	if err != nil {
		return err
	}

	records, err := source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetching records from %s source: %w", source.Name(), err)
	}

	if records.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no records found"))
		return nil
	}

	logger.Info("records ingested",
		zap.String("source", source.Name()),
		zap.Int("count", records.Len()),
		zap.Int("companies", len(records.Companies())),
	)

	if !autoApprove {
		prompt := promptui.Select{
			Label: fmt.Sprintf("Process %d records with paid capability calls?", records.Len()),
			Items: []string{PromptYes, PromptNo},
		}
		_, action, err := prompt.Run()
		if err != nil {
			return fmt.Errorf("prompt failed: %w", err)
		}
		if action != PromptYes {
			return errDeclined
		}
	}

	p, cleanup, err := buildPipeline(ctx, config, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := p.Run(ctx, records, resume)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	return persist(ctx, config, logger, result)
}

func validateConfig(config *Config) error {
	if config == nil {
		return errors.New("config is required")
	}
	if config.Resume == nil || strings.TrimSpace(config.Resume.File) == "" {
		return errors.New("resume file is required under resume.file")
	}
	if config.Source == nil || strings.TrimSpace(config.Source.Path) == "" {
		return errors.New("source path is required under source.path")
	}
	if config.Pipeline == nil {
		return errors.New("pipeline configuration is required")
	}
	if t := config.Pipeline.RecommendThreshold; t < 0 || t > 100 {
		return fmt.Errorf("pipeline.recommend-threshold must be within [0,100], got %d", t)
	}
	if config.AI == nil || config.AI.Gemini == nil {
		return errors.New("ai.gemini configuration is required")
	}
	return nil
}

func buildSource(config *Config, logger *zap.Logger) (ingest.Source, error) {
	switch strings.ToLower(strings.TrimSpace(config.Source.Type)) {
	case "", "jsonl":
		return ingest.NewJSONLSource(config.Source.Path, logger), nil
	case "htmldir":
		return ingest.NewHTMLDirSource(config.Source.Path, logger), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", config.Source.Type)
	}
}

func buildPipeline(ctx context.Context, config *Config, log *zap.Logger) (*pipeline.Pipeline, func(), error) {
	cleanup := func() {}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.AI.Gemini.APIKey,
		File:  config.AI.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, cleanup, fmt.Errorf(
			"loading gemini api key (set GEMINI_API_KEY_FILE or the ai.gemini.api-key-file key in the configuration file): %w", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, config.AI.Gemini.Model)
	if err != nil {
		return nil, cleanup, fmt.Errorf("creating gemini generator: %w", err)
	}

	aiLogger := logger.WithCapability(log, "gemini", generator.Model())

	guard, err := costguard.New(config.Pipeline.SummarizationBudget, gemini.NewSummarizer(generator), aiLogger)
	if err != nil {
		return nil, cleanup, fmt.Errorf("creating cost guard: %w", err)
	}

	normalizer := salary.NewNormalizer(
		gemini.NewExtractor(generator, aiLogger),
		guard,
		aiLogger,
		config.Pipeline.callTimeout(),
	)

	matcher := match.NewMatcher(generator, match.Config{
		RecommendThreshold: config.Pipeline.RecommendThreshold,
		MaxRetries:         config.Pipeline.MaxRetries,
		RetryBackoffBase:   config.Pipeline.backoffBase(),
		CallTimeout:        config.Pipeline.callTimeout(),
		MaxLogLength:       config.AI.Gemini.MaxLogLength,
	}, aiLogger)

	deps := pipeline.Deps{
		Normalizer: normalizer,
		Guard:      guard,
		Matcher:    matcher,
		Logger:     log,
	}

	if config.Filter != nil {
		deps.Filters = eligibility.Steps(eligibility.Config{
			Companies:      config.Filter.Companies,
			RequireSalary:  config.Filter.RequireSalary,
			IncludeReposts: config.Filter.IncludeReposts,
		})
	}

	if config.Redis != nil && strings.TrimSpace(config.Redis.URL) != "" {
		ttlHours := config.Redis.TTLHours
		if ttlHours <= 0 {
			ttlHours = defaultRedisTTLHours
		}
		store, err := seen.New(ctx, config.Redis.URL, time.Duration(ttlHours)*time.Hour)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connecting seen store: %w", err)
		}
		deps.Seen = store
		cleanup = func() { store.Close() }
	}

	p, err := pipeline.New(pipeline.Config{
		ConcurrencyLimit: config.Pipeline.ConcurrencyLimit,
	}, deps)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("creating pipeline: %w", err)
	}

	return p, cleanup, nil
}

func persist(ctx context.Context, config *Config, logger *zap.Logger, result *pipeline.Result) error {
	if config.Output == nil {
		logger.Warn("no output configured, results are discarded")
		return nil
	}

	if path := strings.TrimSpace(config.Output.CSV); path != "" {
		if err := report.WriteCSV(path, result.Rows); err != nil {
			return fmt.Errorf("writing csv report: %w", err)
		}
		logger.Info("report written", zap.String("path", path), zap.Int("rows", len(result.Rows)))
	}

	if url := strings.TrimSpace(config.Output.PostgresURL); url != "" {
		sink, err := report.NewPostgresSink(ctx, url, logger)
		if err != nil {
			return fmt.Errorf("connecting postgres sink: %w", err)
		}
		defer sink.Close()

		if err := sink.Store(ctx, result.Rows); err != nil {
			return fmt.Errorf("storing rows: %w", err)
		}
	}

	return nil
}
