package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the bot reads at startup. It is built once and
// passed down explicitly; nothing reads the environment after Load returns.
type Config struct {
	PracticumToken string `mapstructure:"practicum_token"`
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID string `mapstructure:"telegram_chat_id"`

	Endpoint       string        `mapstructure:"practicum_endpoint"`
	FromDate       int64         `mapstructure:"practicum_from_date"`
	RequestTimeout time.Duration `mapstructure:"practicum_timeout"`
	RetryInterval  time.Duration `mapstructure:"retry_interval"`
	TelegramAPIURL string        `mapstructure:"telegram_api_url"`

	LogLevel    string `mapstructure:"log_level"`
	LogFile     string `mapstructure:"log_file"`
	JournalPath string `mapstructure:"journal_path"`
}

// Load reads the optional dotenv file, then the process environment.
// Values already present in the environment win over the dotenv file.
func Load(dotEnvPath string) (*Config, error) {
	if dotEnvPath != "" {
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				return nil, fmt.Errorf("config: load %s: %w", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: stat %s: %w", dotEnvPath, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsOrDurationHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.trim()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyPracticumToken, "")
	v.SetDefault(keyTelegramToken, "")
	v.SetDefault(keyTelegramChatID, "")
	v.SetDefault(keyEndpoint, DefaultEndpoint)
	v.SetDefault(keyFromDate, CursorNow)
	v.SetDefault(keyRequestTimeout, DefaultRequestTimeout)
	v.SetDefault(keyRetryInterval, DefaultRetryInterval)
	v.SetDefault(keyTelegramAPIURL, "")
	v.SetDefault(keyLogLevel, DefaultLogLevel)
	v.SetDefault(keyLogFile, "")
	v.SetDefault(keyJournalPath, "")
}

func (c *Config) trim() {
	c.PracticumToken = strings.TrimSpace(c.PracticumToken)
	c.TelegramToken = strings.TrimSpace(c.TelegramToken)
	c.TelegramChatID = strings.TrimSpace(c.TelegramChatID)
	if c.RetryInterval <= 0 {
		c.RetryInterval = DefaultRetryInterval
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
}

// Check returns the environment names of required secrets that are missing
// or empty, in a stable order.
func (c *Config) Check() []string {
	var missing []string
	if c.PracticumToken == "" {
		missing = append(missing, EnvPracticumToken)
	}
	if c.TelegramToken == "" {
		missing = append(missing, EnvTelegramToken)
	}
	if c.TelegramChatID == "" {
		missing = append(missing, EnvTelegramChatID)
	}
	return missing
}

// Valid reports whether all three required secrets are set.
func (c *Config) Valid() bool {
	return len(c.Check()) == 0
}

// StartCursor resolves the initial from_date for the first poll.
func (c *Config) StartCursor(now time.Time) int64 {
	if c.FromDate < 0 {
		return now.Unix()
	}
	return c.FromDate
}

// secondsOrDurationHook lets interval variables be written either as Go
// durations ("10m") or as bare seconds ("600").
func secondsOrDurationHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		raw := strings.TrimSpace(reflect.ValueOf(data).String())
		if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return time.Duration(secs) * time.Second, nil
		}
		return raw, nil
	}
}
