package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// ErrConfiguration — конфигурация неполна или некорректна, запуск невозможен.
var ErrConfiguration = errors.New("config: invalid configuration")

type Config struct {
	App struct {
		Env       string
		Timezone  string `validate:"required"`
		LogFormat string `mapstructure:"log_format" validate:"omitempty,oneof=json text"`
	} `mapstructure:"app"`

	Telegram struct {
		Token   string `validate:"required"`
		OwnerID int64  `mapstructure:"owner_id" validate:"required"`
		Timeout int    `validate:"gte=0"`
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Postgres struct {
		DSN string `validate:"required"`
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Dialog struct {
		Store       string        `validate:"oneof=memory postgres redis"`
		IdleTimeout time.Duration `mapstructure:"idle_timeout" validate:"gte=0"`
		SweepSpec   string        `mapstructure:"sweep_spec"`
	} `mapstructure:"dialog"`

	Redis struct {
		Addr     string
		Password string
		DB       int `validate:"gte=0"`
	} `mapstructure:"redis"`

	Booking struct {
		MaxDays         int `mapstructure:"max_days" validate:"gtefield=MinDays"`
		MinDays         int `mapstructure:"min_days" validate:"gte=1"`
		ToolsPerPage    int `mapstructure:"tools_per_page" validate:"gte=1,lte=50"`
		BookingsPerPage int `mapstructure:"bookings_per_page" validate:"gte=1,lte=50"`
		// при true удалять инструмент с активными бронями нельзя
		BlockDeleteWithActive bool `mapstructure:"block_delete_with_active_bookings"`
	} `mapstructure:"booking"`
}

// env-переменные без префикса, как их знает оператор.
var envBindings = map[string]string{
	"app.env":                                   "APP_ENV",
	"app.timezone":                              "APP_TIMEZONE",
	"app.log_format":                            "APP_LOG_FORMAT",
	"telegram.token":                            "BOT_TOKEN",
	"telegram.owner_id":                         "OWNER_ID",
	"telegram.timeout":                          "BOT_POLL_TIMEOUT",
	"http.addr":                                 "HTTP_ADDR",
	"postgres.dsn":                              "DATABASE_URL",
	"metrics.enabled":                           "METRICS_ENABLED",
	"dialog.store":                              "DIALOG_STORE",
	"dialog.idle_timeout":                       "DIALOG_IDLE_TIMEOUT",
	"dialog.sweep_spec":                         "DIALOG_SWEEP_SPEC",
	"redis.addr":                                "REDIS_ADDR",
	"redis.password":                            "REDIS_PASSWORD",
	"redis.db":                                  "REDIS_DB",
	"booking.max_days":                          "BOOKING_MAX_DAYS",
	"booking.min_days":                          "BOOKING_MIN_DAYS",
	"booking.tools_per_page":                    "TOOLS_PER_PAGE",
	"booking.bookings_per_page":                 "BOOKINGS_PER_PAGE",
	"booking.block_delete_with_active_bookings": "BLOCK_DELETE_WITH_ACTIVE_BOOKINGS",
}

var validate = validator.New()

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("app.log_format", "json")
	v.SetDefault("telegram.timeout", 30)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("dialog.store", "postgres")
	v.SetDefault("dialog.idle_timeout", "24h")
	v.SetDefault("dialog.sweep_spec", "@every 10m")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("booking.max_days", 30)
	v.SetDefault("booking.min_days", 1)
	v.SetDefault("booking.tools_per_page", 5)
	v.SetDefault("booking.bookings_per_page", 10)
	v.SetDefault("booking.block_delete_with_active_bookings", false)
}

// Load собирает конфиг: defaults → YAML (если path задан) → .env → переменные окружения.
func Load(path string) (Config, error) {
	// .env не обязателен
	_ = gotenv.Load()

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("%w: read %s: %v", ErrConfiguration, path, err)
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
			}
			return fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrConfiguration, c.App.Timezone, err)
	}
	if c.Dialog.Store == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("%w: REDIS_ADDR is required for the redis dialog store", ErrConfiguration)
	}
	return nil
}

// Location — часовой пояс, в котором считается «сегодня» для броней.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
