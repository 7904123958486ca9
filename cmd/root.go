package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "career-copilot"
)

type Config struct {
	Resume   *ResumeConfig   `mapstructure:"resume"`
	Source   *SourceConfig   `mapstructure:"source"`
	Filter   *FilterConfig   `mapstructure:"filter"`
	Pipeline *PipelineConfig `mapstructure:"pipeline"`
	AI       *AIConfig       `mapstructure:"ai"`
	Output   *OutputConfig   `mapstructure:"output"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	Watch    *WatchConfig    `mapstructure:"watch"`
}

type ResumeConfig struct {
	File   string   `mapstructure:"file"`
	Skills []string `mapstructure:"skills"`
}

type SourceConfig struct {
	// Type selects the ingestion adapter: "jsonl" or "htmldir".
	Type string `mapstructure:"type"`
	Path string `mapstructure:"path"`
}

// FilterConfig narrows the batch before any paid capability call. Omitting
// the whole section disables filtering.
type FilterConfig struct {
	// Companies keeps postings from these companies regardless of salary text.
	Companies []string `mapstructure:"companies"`
	// RequireSalary keeps postings that carry salary text. With a company
	// list set, either condition is enough.
	RequireSalary bool `mapstructure:"require-salary"`
	// IncludeReposts keeps reposts; by default only fresh publications are
	// scored.
	IncludeReposts bool `mapstructure:"include-reposts"`
}

type PipelineConfig struct {
	RecommendThreshold  int `mapstructure:"recommend-threshold"`
	SummarizationBudget int `mapstructure:"summarization-budget"`
	MaxRetries          int `mapstructure:"max-retries"`
	// RetryBackoffBase is the first backoff delay in seconds.
	RetryBackoffBase   float64 `mapstructure:"retry-backoff-base"`
	ConcurrencyLimit   int     `mapstructure:"concurrency-limit"`
	CallTimeoutSeconds float64 `mapstructure:"call-timeout"`
}

func (c *PipelineConfig) backoffBase() time.Duration {
	return time.Duration(c.RetryBackoffBase * float64(time.Second))
}

func (c *PipelineConfig) callTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSeconds * float64(time.Second))
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type OutputConfig struct {
	CSV         string `mapstructure:"csv"`
	PostgresURL string `mapstructure:"postgres-url"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
	// TTLHours ages out remembered fingerprints. Two weeks by default.
	TTLHours int `mapstructure:"ttl-hours"`
}

type WatchConfig struct {
	// Schedule is a cron expression for periodic runs.
	Schedule string `mapstructure:"schedule"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "career-copilot turns scraped job postings and a resume into a ranked table of recommendations",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is career-copilot.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is needed only for the run and watch commands. Without it we
	// can skip initialization.
	if runCmd.CalledAs() == "" && watchCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return config, nil
}
