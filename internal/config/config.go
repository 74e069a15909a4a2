package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"shaheen-admin/internal/chilla"
)

type Config struct {
	Env             string `validate:"required"`
	MongoURI        string `validate:"required"`
	MongoDB         string `validate:"required"`
	UseTransactions bool
	Locale          string `validate:"oneof=en hi"`

	OutputDir         string `validate:"required"`
	TemplateDir       string
	VolunteerTemplate string
	FontPath          string

	// Zero dates mean "today" and are resolved by the task.
	BackfillStart    chilla.Date
	BackfillEnd      chilla.Date
	HistoryStart     chilla.Date
	CertificateLimit int `validate:"gte=0"`

	Rules Rules
}

// Rules are the attendance rule parameters shared by every task.
type Rules struct {
	Modulo                      int             `validate:"gte=1"`
	TimezoneOffsetMinutes       int             `validate:"gte=-720,lte=840"`
	Windows                     []chilla.Period `validate:"min=1"`
	EligibilityThresholdPercent float64         `validate:"gte=0,lte=100"`
}

func (r Rules) Calendar() chilla.Calendar {
	return chilla.NewCalendar(r.TimezoneOffsetMinutes)
}

func (r Rules) Engine() chilla.Engine {
	return chilla.NewEngine(r.Calendar(), r.EligibilityThresholdPercent)
}

// Window returns the configured window with the given name.
func (r Rules) Window(name string) (chilla.Period, bool) {
	for _, w := range r.Windows {
		if strings.EqualFold(w.Name, name) {
			return w, true
		}
	}
	return chilla.Period{}, false
}

// LoadEnv reads a .env file from the working directory if there is one.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:               getEnv("ENV", "development"),
		MongoURI:          getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:           getEnv("MONGODB_DATABASE", "shaheen_namaz"),
		Locale:            getEnv("LOCALE", "en"),
		OutputDir:         getEnv("OUTPUT_DIR", "output"),
		TemplateDir:       getEnv("TEMPLATE_DIR", "templates/certificates"),
		VolunteerTemplate: getEnv("VOLUNTEER_TEMPLATE", "templates/volunteer/certificate.jpg"),
		FontPath:          getEnv("FONT_PATH", "fonts/Montserrat-SemiBoldItalic.ttf"),
	}

	var err error
	if cfg.UseTransactions, err = boolEnv("USE_TRANSACTIONS", false); err != nil {
		return nil, err
	}
	if cfg.CertificateLimit, err = intEnv("CERTIFICATE_LIMIT", 0); err != nil {
		return nil, err
	}
	if cfg.BackfillStart, err = dateEnv("BACKFILL_START", chilla.Date{}); err != nil {
		return nil, err
	}
	if cfg.BackfillEnd, err = dateEnv("BACKFILL_END", chilla.Date{}); err != nil {
		return nil, err
	}
	if cfg.HistoryStart, err = dateEnv("HISTORY_START", chilla.Date{Year: 2025, Month: 8, Day: 1}); err != nil {
		return nil, err
	}

	if cfg.Rules.Modulo, err = intEnv("STREAK_MODULO", chilla.DefaultModulo); err != nil {
		return nil, err
	}
	if cfg.Rules.TimezoneOffsetMinutes, err = intEnv("TZ_OFFSET_MINUTES", chilla.DefaultOffsetMinutes); err != nil {
		return nil, err
	}
	if cfg.Rules.EligibilityThresholdPercent, err = floatEnv("ELIGIBILITY_THRESHOLD", chilla.DefaultThreshold); err != nil {
		return nil, err
	}
	cfg.Rules.Windows = chilla.DefaultPeriods()
	if v := os.Getenv("CHILLA_WINDOWS"); v != "" {
		if cfg.Rules.Windows, err = chilla.ParsePeriods(v); err != nil {
			return nil, fmt.Errorf("parse CHILLA_WINDOWS: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if err := chilla.ValidatePeriods(c.Rules.Windows); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func dateEnv(key string, fallback chilla.Date) (chilla.Date, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := chilla.ParseDate(v)
	if err != nil {
		return chilla.Date{}, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
