package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"eigen/internal/decomp"
)

// Config holds the full application configuration.
type Config struct {
	Matrix        MatrixConfig `yaml:"matrix" mapstructure:"matrix"`
	Entry         EntryConfig  `yaml:"entry" mapstructure:"entry"`
	Decomposition string       `yaml:"decomposition" mapstructure:"decomposition"`
	UI            UIConfig     `yaml:"ui" mapstructure:"ui"`
	Log           LogConfig    `yaml:"log" mapstructure:"log"`
}

// MatrixConfig sets the initial matrix shape and the largest offered size.
type MatrixConfig struct {
	Rows    int `yaml:"rows" mapstructure:"rows"`
	Cols    int `yaml:"cols" mapstructure:"cols"`
	MaxSize int `yaml:"max_size" mapstructure:"max_size"`
}

// EntryConfig configures the numeric cell fields.
type EntryConfig struct {
	MaxLength int `yaml:"max_length" mapstructure:"max_length"`
	// Deferred queues edits and applies them once per event loop turn.
	Deferred bool `yaml:"deferred" mapstructure:"deferred"`
}

// UIConfig configures the terminal front end.
type UIConfig struct {
	Splash    bool `yaml:"splash" mapstructure:"splash"`
	CellWidth int  `yaml:"cell_width" mapstructure:"cell_width"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	// File receives log output; the terminal owns stdout. Empty means stderr.
	File string `yaml:"file" mapstructure:"file"`
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"rows":     "matrix.rows",
	"cols":     "matrix.cols",
	"log-file": "log.file",
}

// Load reads configuration from file, environment and flags. file overrides
// the config.yaml lookup in the working directory; flags may be nil.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Config file
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("EIGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("matrix.rows", 3)
	v.SetDefault("matrix.cols", 3)
	v.SetDefault("matrix.max_size", 7)
	v.SetDefault("entry.max_length", 10)
	v.SetDefault("entry.deferred", true)
	v.SetDefault("decomposition", decomp.Eigen.String())
	v.SetDefault("ui.splash", true)
	v.SetDefault("ui.cell_width", 12)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "eigen.log")

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, eris.Wrapf(err, "config: bind flag %s", name)
				}
			}
		}
	}

	// Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks value ranges and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string
	if c.Matrix.MaxSize < 1 {
		problems = append(problems, "matrix.max_size must be at least 1")
	}
	if c.Matrix.Rows < 1 || c.Matrix.Rows > c.Matrix.MaxSize {
		problems = append(problems, "matrix.rows must be between 1 and matrix.max_size")
	}
	if c.Matrix.Cols < 1 || c.Matrix.Cols > c.Matrix.MaxSize {
		problems = append(problems, "matrix.cols must be between 1 and matrix.max_size")
	}
	if c.Entry.MaxLength < 1 {
		problems = append(problems, "entry.max_length must be at least 1")
	}
	if _, err := decomp.ParseKind(c.Decomposition); err != nil {
		problems = append(problems, "decomposition must be one of Eigen, SVD, LU, QR, Cholesky")
	}
	if c.UI.CellWidth < 4 {
		problems = append(problems, "ui.cell_width must be at least 4")
	}
	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
