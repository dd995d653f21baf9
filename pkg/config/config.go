package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/goliatone/go-listview/pkg/mailer"
	"github.com/goliatone/go-listview/pkg/session"
)

// EnvPrefix prefixes environment overrides, e.g. LISTVIEW_SERVER_ADDR.
const EnvPrefix = "LISTVIEW"

// Config is the runtime configuration for list hosts (craftadmin, listctl).
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Lists    ListsConfig       `mapstructure:"lists"`
	Session  SessionConfig     `mapstructure:"session"`
	SMTP     mailer.SMTPConfig `mapstructure:"smtp"`
	LogLevel string            `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Metrics  bool              `mapstructure:"metrics"`
}

type ServerConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	BasePath string `mapstructure:"base_path" validate:"required,startswith=/"`
}

type ListsConfig struct {
	Manifest    string        `mapstructure:"manifest"`
	ExportDir   string        `mapstructure:"export_dir"`
	ExportFmt   string        `mapstructure:"export_format" validate:"omitempty,oneof=csv json yaml"`
	Currency    string        `mapstructure:"currency" validate:"required,len=3"`
	ChartTTL    time.Duration `mapstructure:"chart_ttl" validate:"gte=0"`
	SourceToken string        `mapstructure:"source_token"`
	Rotation    time.Duration `mapstructure:"rotation" validate:"gte=0"`
}

type SessionConfig struct {
	Secret string         `mapstructure:"secret" validate:"required_with=Users,omitempty,min=16"`
	TTL    time.Duration  `mapstructure:"ttl" validate:"gte=0"`
	Users  []session.User `mapstructure:"users" validate:"dive"`
}

// Enabled reports whether login routes and the guard should be mounted.
func (s SessionConfig) Enabled() bool {
	return s.Secret != "" && len(s.Users) > 0
}

// Options builds session manager options.
func (s SessionConfig) Options() session.Options {
	return session.Options{Secret: []byte(s.Secret), TTL: s.TTL, Users: s.Users}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":9876")
	v.SetDefault("server.base_path", "/admin")
	v.SetDefault("lists.manifest", "")
	v.SetDefault("lists.export_dir", "")
	v.SetDefault("lists.export_format", "")
	v.SetDefault("lists.currency", "KES")
	v.SetDefault("lists.chart_ttl", 5*time.Minute)
	v.SetDefault("lists.source_token", "")
	v.SetDefault("lists.rotation", 0)
	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", session.DefaultTTL)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 0)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics", false)
}

// Load reads the optional config file, applies LISTVIEW_* overrides and
// validates the result.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and reports every failing field.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("config: invalid: %s", strings.Join(msgs, "; "))
}
