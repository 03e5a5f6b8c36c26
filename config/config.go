package config

import (
	"regexp"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gluco-ml/gluco/id3"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration of the gluco command line.
type Config struct {
	Data       DataConfig       `mapstructure:"data"`
	ID3        ID3Config        `mapstructure:"id3"`
	NaiveBayes NaiveBayesConfig `mapstructure:"naive_bayes"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	Store      StoreConfig      `mapstructure:"store"`
}

// DataConfig locates the training records and their metadata.
type DataConfig struct {
	Metadata string `mapstructure:"metadata"`
	Input    string `mapstructure:"input"`
	Table    string `mapstructure:"table" validate:"omitempty,identifier"`
}

// ID3Config holds the default pruning strategy for decision trees.
type ID3Config struct {
	Prune string `mapstructure:"prune" validate:"pruner"`
}

// NaiveBayesConfig holds the parameters of Gaussian Naive Bayes training.
type NaiveBayesConfig struct {
	Epsilon     float64 `mapstructure:"epsilon" validate:"gt=0"`
	Standardize bool    `mapstructure:"standardize"`
}

// EvaluationConfig holds the parameters of train/test splits and
// cross validation.
type EvaluationConfig struct {
	Folds     int     `mapstructure:"folds" validate:"gte=2"`
	TestRatio float64 `mapstructure:"test_ratio" validate:"gt=0,lt=1"`
	Seed      int64   `mapstructure:"seed"`
	Jobs      int     `mapstructure:"jobs" validate:"gte=1"`
}

// StoreConfig locates the model store. An empty URL keeps models in files.
type StoreConfig struct {
	URL    string `mapstructure:"url"`
	Prefix string `mapstructure:"prefix" validate:"required"`
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// GetDefaultConfig returns the configuration used when no file or environment overrides it.
func GetDefaultConfig() *Config {
	return &Config{
		ID3: ID3Config{
			Prune: "none",
		},
		NaiveBayes: NaiveBayesConfig{
			Epsilon: 1e-9,
		},
		Evaluation: EvaluationConfig{
			Folds:     10,
			TestRatio: 0.2,
			Seed:      42,
			Jobs:      runtime.NumCPU(),
		},
		Store: StoreConfig{
			Prefix: "gluco",
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	v.SetDefault("data.metadata", defaultConfig.Data.Metadata)
	v.SetDefault("data.input", defaultConfig.Data.Input)
	v.SetDefault("data.table", defaultConfig.Data.Table)
	v.SetDefault("id3.prune", defaultConfig.ID3.Prune)
	v.SetDefault("naive_bayes.epsilon", defaultConfig.NaiveBayes.Epsilon)
	v.SetDefault("naive_bayes.standardize", defaultConfig.NaiveBayes.Standardize)
	v.SetDefault("evaluation.folds", defaultConfig.Evaluation.Folds)
	v.SetDefault("evaluation.test_ratio", defaultConfig.Evaluation.TestRatio)
	v.SetDefault("evaluation.seed", defaultConfig.Evaluation.Seed)
	v.SetDefault("evaluation.jobs", defaultConfig.Evaluation.Jobs)
	v.SetDefault("store.url", defaultConfig.Store.URL)
	v.SetDefault("store.prefix", defaultConfig.Store.Prefix)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefault(v)
	// GLUCO_EVALUATION__FOLDS overrides evaluation.folds
	v.SetEnvPrefix("GLUCO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()
	return v
}

/*
LoadConfig reads the configuration file at path, TOML or YAML by extension,
applies environment overrides and validates the result. An empty path loads
the defaults and environment only.
*/
func LoadConfig(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Annotatef(err, "reading config %s", path)
		}
	}
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Annotate(err, "decoding config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks every field of the configuration.
func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("pruner", func(fl validator.FieldLevel) bool {
		_, err := id3.ParsePruner(fl.Field().String())
		return err == nil
	}); err != nil {
		return errors.Trace(err)
	}
	if err := validate.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return identifier.MatchString(fl.Field().String())
	}); err != nil {
		return errors.Trace(err)
	}
	if err := validate.Struct(config); err != nil {
		return errors.Annotate(err, "invalid config")
	}
	return nil
}
