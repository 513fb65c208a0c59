/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: Configuration for mockjson. Loads config.yaml through viper with defaults for
every key, reads a .env file when present, and honours MOCKJSON_* environment overrides.
The decoded Config converts into the option structs of the corpus, cache and synthesis layers.
*/

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kleascm/mockjson/pkg/cache"
	"github.com/kleascm/mockjson/pkg/corpus"
	"github.com/kleascm/mockjson/pkg/generator"
	"github.com/kleascm/mockjson/pkg/logging"
	"github.com/kleascm/mockjson/pkg/mockerr"
	"github.com/kleascm/mockjson/pkg/policy"
	"github.com/kleascm/mockjson/pkg/profile"
	"github.com/kleascm/mockjson/pkg/synth"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MOCKJSON_PATHS_EXAMPLES
const EnvPrefix = "MOCKJSON"

// DefaultFile is written when the policy changes and no config file was loaded
const DefaultFile = "config.yaml"

// DateLayout is the layout of reference_date
const DateLayout = "2006-01-02"

// DefaultMaxRecords bounds a single generation request
const DefaultMaxRecords = 1000

// Paths locates the corpus and generated output
type Paths struct {
	Examples string `mapstructure:"examples"`
	Output   string `mapstructure:"output"`
}

// Corpus controls how example documents group into logical types
type Corpus struct {
	GroupBy    string `mapstructure:"group_by"`
	GroupField string `mapstructure:"group_field"`
	SplitPath  string `mapstructure:"split_path"`
}

// Synthesis mirrors synth.Options in configuration form
type Synthesis struct {
	ProfileSampleProbability float64 `mapstructure:"profile_sample_probability"`
	OptionalInclusion        float64 `mapstructure:"optional_inclusion"`
	NullProbability          float64 `mapstructure:"null_probability"`
	MinArrayItems            int     `mapstructure:"min_array_items"`
	MaxArrayItems            int     `mapstructure:"max_array_items"`
}

// Profile bounds the retained value samples
type Profile struct {
	MaxDistinct int `mapstructure:"max_distinct"`
}

// Cache sizes the schema cache
type Cache struct {
	Size int `mapstructure:"size"`
}

// Generation bounds and formats generation requests
type Generation struct {
	MaxRecords   int    `mapstructure:"max_records"`
	Format       string `mapstructure:"format"`
	WithMetadata bool   `mapstructure:"with_metadata"`
}

// Config is the decoded configuration
type Config struct {
	Paths           Paths                `mapstructure:"paths"`
	PreserveFields  []string             `mapstructure:"preserve_fields"`
	SensitiveFields []string             `mapstructure:"sensitive_fields"`
	Corpus          Corpus               `mapstructure:"corpus"`
	Profile         Profile              `mapstructure:"profile"`
	Synthesis       Synthesis            `mapstructure:"synthesis"`
	Seed            int64                `mapstructure:"seed"`
	ReferenceDate   string               `mapstructure:"reference_date"`
	Cache           Cache                `mapstructure:"cache"`
	Generation      Generation           `mapstructure:"generation"`
	Generators      map[string]string    `mapstructure:"generators"` // Logical type to strategy
	Logging         logging.LoggerConfig `mapstructure:"logging"`
}

// SetDefaults registers a default for every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("paths.examples", "./examples")
	v.SetDefault("paths.output", "./output")
	v.SetDefault(policy.Key, policy.DefaultFields)
	v.SetDefault("sensitive_fields", profile.DefaultSensitiveFields)

	v.SetDefault("corpus.group_by", string(corpus.GroupByFilename))
	v.SetDefault("corpus.group_field", corpus.DefaultGroupField)
	v.SetDefault("corpus.split_path", "")

	v.SetDefault("profile.max_distinct", profile.DefaultMaxDistinct)

	stock := synth.DefaultOptions()
	v.SetDefault("synthesis.profile_sample_probability", stock.ProfileSampleProbability)
	v.SetDefault("synthesis.optional_inclusion", stock.OptionalInclusion)
	v.SetDefault("synthesis.null_probability", stock.NullProbability)
	v.SetDefault("synthesis.min_array_items", stock.MinArrayItems)
	v.SetDefault("synthesis.max_array_items", stock.MaxArrayItems)

	v.SetDefault("seed", 0)
	v.SetDefault("reference_date", "")
	v.SetDefault("cache.size", cache.DefaultSize)

	v.SetDefault("generation.max_records", DefaultMaxRecords)
	v.SetDefault("generation.format", "json")
	v.SetDefault("generation.with_metadata", false)

	v.SetDefault("generators", map[string]string{})

	log := logging.DefaultConfig()
	v.SetDefault("logging.level", string(log.Level))
	v.SetDefault("logging.format", string(log.Format))
	v.SetDefault("logging.output_dir", log.OutputDir)
	v.SetDefault("logging.max_files", log.MaxFiles)
	v.SetDefault("logging.timestamp", log.Timestamp)
	v.SetDefault("logging.caller", log.Caller)
	v.SetDefault("logging.colors", log.Colors)
	v.SetDefault("logging.console", log.Console)
}

// New returns a viper instance with defaults and environment overrides registered
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration. An explicit path must exist; otherwise config.yaml
// in the working directory is used when present.
func Load(v *viper.Viper, path string) error {
	// Environment files are optional
	_ = godotenv.Load()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return mockerr.Wrap(mockerr.ErrConfiguration, "load config", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return mockerr.Wrap(mockerr.ErrConfiguration, "load config", DefaultFile, err)
	}
	return nil
}

// Decode unmarshals and validates the configuration held by v
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, mockerr.Wrap(mockerr.ErrConfiguration, "decode config", "", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PolicyFile is where preserve policy changes are written
func PolicyFile(v *viper.Viper) string {
	if used := v.ConfigFileUsed(); used != "" {
		return used
	}
	return DefaultFile
}

// Validate checks every value for range and consistency
func (c *Config) Validate() error {
	invalid := func(key string, value any) error {
		return mockerr.New(mockerr.ErrConfiguration, "validate", key).With("value", value)
	}

	if c.Paths.Examples == "" {
		return invalid("paths.examples", c.Paths.Examples)
	}
	switch corpus.Grouping(c.Corpus.GroupBy) {
	case corpus.GroupByFilename, corpus.GroupByField:
	default:
		return invalid("corpus.group_by", c.Corpus.GroupBy)
	}
	if c.Profile.MaxDistinct <= 0 {
		return invalid("profile.max_distinct", c.Profile.MaxDistinct)
	}
	if c.Cache.Size <= 0 {
		return invalid("cache.size", c.Cache.Size)
	}
	if c.Generation.MaxRecords <= 0 {
		return invalid("generation.max_records", c.Generation.MaxRecords)
	}
	switch c.Generation.Format {
	case "json", "yaml":
	default:
		return invalid("generation.format", c.Generation.Format)
	}
	if _, err := c.Reference(); err != nil {
		return err
	}
	if _, err := c.SynthOptions(); err != nil {
		return err
	}
	for logicalType, strategy := range c.Generators {
		if _, _, err := generator.Strategy(strategy); err != nil {
			return mockerr.Wrap(mockerr.ErrConfiguration, "validate", "generators."+logicalType, err)
		}
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return nil
}

// Reference parses reference_date; the zero time means today
func (c *Config) Reference() (time.Time, error) {
	if c.ReferenceDate == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, c.ReferenceDate)
	if err != nil {
		return time.Time{}, mockerr.Wrap(mockerr.ErrConfiguration, "validate", "reference_date",
			fmt.Errorf("expected %s: %w", DateLayout, err))
	}
	return t, nil
}

// SynthOptions converts the synthesis section into synth.Options
func (c *Config) SynthOptions() (synth.Options, error) {
	ref, err := c.Reference()
	if err != nil {
		return synth.Options{}, err
	}
	opts := synth.Options{
		ProfileSampleProbability: c.Synthesis.ProfileSampleProbability,
		OptionalInclusion:        c.Synthesis.OptionalInclusion,
		NullProbability:          c.Synthesis.NullProbability,
		MinArrayItems:            c.Synthesis.MinArrayItems,
		MaxArrayItems:            c.Synthesis.MaxArrayItems,
		Seed:                     c.Seed,
		ReferenceDate:            ref,
	}
	if err := opts.Validate(); err != nil {
		return synth.Options{}, err
	}
	return opts, nil
}

// CorpusOptions converts the corpus section into corpus.Options
func (c *Config) CorpusOptions(logger logrus.FieldLogger) corpus.Options {
	return corpus.Options{
		Dir:        c.Paths.Examples,
		GroupBy:    corpus.Grouping(c.Corpus.GroupBy),
		GroupField: c.Corpus.GroupField,
		SplitPath:  c.Corpus.SplitPath,
		Logger:     logger,
	}
}

// StrategyFor returns the configured strategy of a logical type, defaulting to schema
func (c *Config) StrategyFor(logicalType string) string {
	if s, ok := c.Generators[strings.ToLower(logicalType)]; ok && s != "" {
		return s
	}
	return generator.StrategySchema
}
