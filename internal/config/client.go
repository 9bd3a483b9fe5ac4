package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix marks environment variables read by the study CLI.
const EnvPrefix = "FLASHDECK_"

// ClientConfig configures the study CLI. Keys use dashes everywhere: YAML
// `ignore-due-date`, env FLASHDECK_IGNORE_DUE_DATE, flag --ignore-due-date.
type ClientConfig struct {
	Server        string        `koanf:"server" validate:"required,url"`
	Token         string        `koanf:"token"`
	Timeout       time.Duration `koanf:"timeout" validate:"required"`
	QuietPeriod   time.Duration `koanf:"quiet-period" validate:"required"`
	Mode          string        `koanf:"mode" validate:"oneof=flashcard learn"`
	Direction     string        `koanf:"direction" validate:"oneof=term_to_def def_to_term both"`
	Types         []string      `koanf:"types" validate:"dive,oneof=multiple_choices written"`
	IgnoreDueDate bool          `koanf:"ignore-due-date"`
}

func clientDefaults() map[string]any {
	return map[string]any{
		"server":          "http://localhost:8080",
		"timeout":         "15s",
		"quiet-period":    "1s",
		"mode":            "flashcard",
		"direction":       "both",
		"types":           []string{"multiple_choices", "written"},
		"ignore-due-date": false,
	}
}

var clientValidate = validator.New(validator.WithRequiredStructEnabled())

// LoadClient layers defaults, the YAML file at path (skipped when it does not
// exist), FLASHDECK_* environment variables and finally any flags the user set.
func LoadClient(path string, flags *pflag.FlagSet) (ClientConfig, error) {
	k := koanf.New(".")

	for key, val := range clientDefaults() {
		if err := k.Set(key, val); err != nil {
			return ClientConfig{}, fmt.Errorf("set default %s: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if _, statErr := os.Stat(path); !stderrors.Is(statErr, fs.ErrNotExist) {
				return ClientConfig{}, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	envKey := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", "-")
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return ClientConfig{}, fmt.Errorf("load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return ClientConfig{}, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg ClientConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("decode config: %w", err)
	}
	if err := clientValidate.Struct(cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("invalid client configuration: %w", err)
	}
	return cfg, nil
}

// ClientFlags registers the flags LoadClient understands.
func ClientFlags(flags *pflag.FlagSet) {
	flags.String("server", "http://localhost:8080", "flashdeck server base URL")
	flags.String("token", "", "bearer token sent to the server")
	flags.Duration("timeout", 15*time.Second, "HTTP request timeout")
	flags.Duration("quiet-period", time.Second, "autosave quiet period")
	flags.String("mode", "flashcard", "study mode: flashcard or learn")
	flags.String("direction", "both", "learn mode direction: term_to_def, def_to_term or both")
	flags.StringSlice("types", []string{"multiple_choices", "written"}, "learn mode question types")
	flags.Bool("ignore-due-date", false, "study every card, not only due ones")
}
