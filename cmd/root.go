package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-matcher/internal/dedup"
	"github.com/spigell/resume-matcher/internal/evaluation"
	"github.com/spigell/resume-matcher/internal/matching"
)

const (
	app = "resume-matcher"
)

type Config struct {
	Threshold   float64            `mapstructure:"threshold" validate:"gte=0,lte=1"`
	Weights     evaluation.Weights `mapstructure:"weights"`
	Workers     int                `mapstructure:"workers" validate:"gte=1"`
	Dedup       dedup.Config       `mapstructure:"dedup"`
	ExcludeFile string             `mapstructure:"exclude-file"`
	Shortlist   ShortlistConfig    `mapstructure:"shortlist"`
	Retrieval   RetrievalConfig    `mapstructure:"retrieval"`
	Redis       *RedisConfig       `mapstructure:"redis"`
	Server      ServerConfig       `mapstructure:"server"`
}

type ShortlistConfig struct {
	Overfetch       int      `mapstructure:"overfetch" validate:"gte=1"`
	MinSkillsMatch  float64  `mapstructure:"min-skills-match" validate:"gte=0,lte=1"`
	DisabledFilters []string `mapstructure:"disabled-filters" validate:"dive,oneof=dedup exclude_file experience_range skills_match"`
}

type RetrievalConfig struct {
	Provider   string        `mapstructure:"provider" validate:"oneof=file http gemini"`
	PoolFile   string        `mapstructure:"pool-file" validate:"required_unless=Provider http"`
	URL        string        `mapstructure:"url" validate:"required_if=Provider http,omitempty,url"`
	MaxRetries int           `mapstructure:"max-retries" validate:"gte=0"`
	Gemini     *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key" json:"-"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password" json:"-"`
	PasswordFile string        `mapstructure:"password-file"`
	DB           int           `mapstructure:"db" validate:"gte=0"`
	Prefix       string        `mapstructure:"prefix"`
	TTL          time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-matcher shortlists and evaluates candidate resumes against a job description",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"retrieval.gemini.api-key-file": "RESUME_MATCHER_GEMINI_API_KEY_FILE",
		"redis.password-file":           "RESUME_MATCHER_REDIS_PASSWORD_FILE",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults(viper.GetViper())
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	weights := evaluation.DefaultWeights()
	d := dedup.DefaultConfig()

	v.SetDefault("threshold", evaluation.DefaultThreshold)
	v.SetDefault("weights.semantic", weights.Semantic)
	v.SetDefault("weights.skills", weights.Skills)
	v.SetDefault("weights.experience", weights.Experience)
	v.SetDefault("weights.certification", weights.Certification)
	v.SetDefault("weights.role-fit", weights.RoleFit)
	v.SetDefault("workers", evaluation.DefaultWorkers)
	v.SetDefault("dedup.name-threshold", d.NameThreshold)
	v.SetDefault("dedup.content-threshold", d.ContentThreshold)
	v.SetDefault("dedup.identical-content-threshold", d.IdenticalContentThreshold)
	v.SetDefault("dedup.content-prefix", d.ContentPrefix)
	v.SetDefault("shortlist.overfetch", matching.DefaultOverfetch)
	v.SetDefault("shortlist.min-skills-match", 0)
	v.SetDefault("retrieval.provider", "file")
	v.SetDefault("retrieval.max-retries", 2)
	v.SetDefault("server.addr", ":8080")
}

func initConfig() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("loading .env: %v", err)
	}

	// Version does not need a config.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Without a config file defaults still apply.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	e := &evaluation.Evaluator{Threshold: config.Threshold, Weights: config.Weights}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &config, nil
}
