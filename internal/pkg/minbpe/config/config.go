package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Modes accepted as the first positional argument.
const (
	ModeTrain  = "train"
	ModeEncode = "encode"
	ModeDecode = "decode"
	ModeVocab  = "vocab"
)

type Config struct {
	Mode         string
	ModelPath    string `mapstructure:"model_path"`
	InputPath    string `mapstructure:"input_path"`
	OutputPrefix string `mapstructure:"output_prefix"`
	Text         string `mapstructure:"text"`
	IDs          string `mapstructure:"ids"`
	VocabSize    int    `mapstructure:"vocab_size"`
	Preset       string `mapstructure:"preset"`
	Special      string `mapstructure:"special"`
	Normalize    bool   `mapstructure:"normalize"`
	Verbose      bool   `mapstructure:"verbose"`
	LogLevel     string `mapstructure:"log_level"`
	LogFile      string `mapstructure:"log_file"`
}

func LoadAndParse() (*Config, error) {
	viper.SetDefault("model_path", "")
	viper.SetDefault("input_path", "")
	viper.SetDefault("output_prefix", "tokenizer")
	viper.SetDefault("vocab_size", 512)
	viper.SetDefault("preset", "gpt4")
	viper.SetDefault("special", "none_raise")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_file", "")

	flagSet := pflag.NewFlagSet("minbpe", pflag.ContinueOnError)
	configFile := flagSet.StringP("config", "c", "", "Path to config file")
	flagSet.StringP("model", "m", "", "Path to a saved .model file")
	flagSet.StringP("input", "i", "", "Training corpus file")
	flagSet.StringP("output", "o", "", "Output prefix for .model/.vocab files")
	flagSet.StringP("text", "t", "", "Text to encode (use '-' to read from stdin)")
	flagSet.StringP("file", "f", "", "Read text to encode from file")
	flagSet.String("ids", "", "Comma-separated token ids to decode")
	flagSet.Int("vocab-size", 512, "Target vocabulary size (>= 256)")
	flagSet.StringP("preset", "p", "", "Tokenizer preset: basic, gpt2, gpt4")
	flagSet.StringP("special", "s", "", "Special-token policy: all, none, none_raise, set:<literals>")
	flagSet.Bool("normalize", false, "Normalize the training corpus (NFC, newlines) before training")
	flagSet.BoolP("verbose", "v", false, "Show per-merge training progress")
	flagSet.StringP("log-level", "l", "", "Log level (debug, info, warn, error)")
	flagSet.String("log-file", "", "Log file path")
	helpFlag := flagSet.BoolP("help", "h", false, "Show help message")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if *helpFlag {
		fmt.Fprintf(os.Stderr, "Usage: minbpe <train|encode|decode|vocab> [options] [text]\n\nOptions:\n")
		flagSet.PrintDefaults()
		os.Exit(0)
	}

	bindings := map[string]string{
		"model_path":    "model",
		"input_path":    "input",
		"output_prefix": "output",
		"text":          "text",
		"ids":           "ids",
		"vocab_size":    "vocab-size",
		"preset":        "preset",
		"special":       "special",
		"normalize":     "normalize",
		"verbose":       "verbose",
		"log_level":     "log-level",
		"log_file":      "log-file",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flagSet.Lookup(flag)); err != nil {
			return nil, err
		}
	}

	if *configFile != "" {
		viper.SetConfigFile(*configFile)
	} else {
		viper.SetConfigName("minbpe.cfg")
		viper.SetConfigType("toml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("configs")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "minbpe"))
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	viper.SetEnvPrefix("MINBPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	args := flagSet.Args()
	if len(args) == 0 {
		return nil, fmt.Errorf("mode is required: train, encode, decode or vocab")
	}
	cfg.Mode = args[0]
	args = args[1:]

	textFile, _ := flagSet.GetString("file")
	if textFile != "" {
		content, err := os.ReadFile(textFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read text file: %w", err)
		}
		cfg.Text = string(content)
	} else if cfg.Text == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		cfg.Text = string(content)
	} else if cfg.Text == "" && len(args) > 0 {
		cfg.Text = strings.Join(args, " ")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) validate() error {
	switch cfg.Mode {
	case ModeTrain:
		if cfg.InputPath == "" {
			return fmt.Errorf("train: a corpus file is required (-i)")
		}
		if cfg.VocabSize < 256 {
			return fmt.Errorf("train: vocab size must be at least 256, got %d", cfg.VocabSize)
		}
	case ModeEncode:
		if cfg.ModelPath == "" {
			return fmt.Errorf("encode: a model file is required (-m)")
		}
		if cfg.Text == "" {
			return fmt.Errorf("encode: text is required (use -t, -f, stdin or a positional argument)")
		}
	case ModeDecode:
		if cfg.ModelPath == "" {
			return fmt.Errorf("decode: a model file is required (-m)")
		}
		if cfg.IDs == "" {
			return fmt.Errorf("decode: token ids are required (--ids)")
		}
	case ModeVocab:
		if cfg.ModelPath == "" {
			return fmt.Errorf("vocab: a model file is required (-m)")
		}
	default:
		return fmt.Errorf("unknown mode %q: expected train, encode, decode or vocab", cfg.Mode)
	}
	return nil
}
