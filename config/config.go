package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	AppName     = "tcg-card-lister"
	EnvFileName = "config.env"
)

// Environment variables read by Load.
const (
	EnvGeminiAPIKey          = "GEMINI_API_KEY"
	EnvPokemonTCGAPIKey      = "POKEMON_TCG_API_KEY"
	EnvScansDir              = "TCG_SCANS_DIR"
	EnvOutputDir             = "TCG_OUTPUT_DIR"
	EnvDBPath                = "TCG_DB_PATH"
	EnvConcurrency           = "TCG_CONCURRENCY"
	EnvMarkup                = "TCG_MARKUP"
	EnvPriceFloor            = "TCG_PRICE_FLOOR"
	EnvPriceCacheDays        = "TCG_PRICE_CACHE_DAYS"
	EnvLocation              = "TCG_LOCATION"
	EnvPostalCode            = "TCG_POSTAL_CODE"
	EnvImageBaseURL          = "TCG_IMAGE_BASE_URL"
	EnvPaymentPolicy         = "TCG_PAYMENT_POLICY"
	EnvShippingPolicyUnder20 = "TCG_SHIPPING_POLICY_UNDER_20"
	EnvShippingPolicyOver20  = "TCG_SHIPPING_POLICY_OVER_20"
	EnvReturnPolicy          = "TCG_RETURN_POLICY"
)

// RequiredEnvVars must be set before cards can be processed.
var RequiredEnvVars = []string{EnvGeminiAPIKey}

type Config struct {
	GeminiAPIKey     string
	PokemonTCGAPIKey string

	ScansDir  string
	OutputDir string
	DBPath    string

	Concurrency    int
	Markup         float64
	PriceFloor     float64
	PriceCacheDays int

	Location     string
	PostalCode   string
	ImageBaseURL string

	PaymentPolicy         string
	ShippingPolicyUnder20 string
	ShippingPolicyOver20  string
	ReturnPolicy          string
}

func Default() Config {
	return Config{
		ScansDir:              "scans",
		OutputDir:             "output",
		DBPath:                "tcg-card-lister.db",
		Concurrency:           4,
		Markup:                1.30,
		PriceFloor:            1.99,
		PriceCacheDays:        30,
		Location:              "Vista, CA",
		PostalCode:            "92083",
		PaymentPolicy:         "Immediate Payment (BIN)",
		ShippingPolicyUnder20: "Standard Envelope 1oz (Free)",
		ShippingPolicyOver20:  "Free Shipping US GA",
		ReturnPolicy:          "Returns Accepted",
	}
}

// Load reads the configuration from the environment on top of Default.
// Malformed numbers are reported as errors rather than ignored.
func Load() (Config, error) {
	cfg := Default()

	strs := []struct {
		env string
		dst *string
	}{
		{EnvGeminiAPIKey, &cfg.GeminiAPIKey},
		{EnvPokemonTCGAPIKey, &cfg.PokemonTCGAPIKey},
		{EnvScansDir, &cfg.ScansDir},
		{EnvOutputDir, &cfg.OutputDir},
		{EnvDBPath, &cfg.DBPath},
		{EnvLocation, &cfg.Location},
		{EnvPostalCode, &cfg.PostalCode},
		{EnvImageBaseURL, &cfg.ImageBaseURL},
		{EnvPaymentPolicy, &cfg.PaymentPolicy},
		{EnvShippingPolicyUnder20, &cfg.ShippingPolicyUnder20},
		{EnvShippingPolicyOver20, &cfg.ShippingPolicyOver20},
		{EnvReturnPolicy, &cfg.ReturnPolicy},
	}
	for _, s := range strs {
		if v := os.Getenv(s.env); v != "" {
			*s.dst = v
		}
	}

	var err error
	if cfg.Concurrency, err = positiveInt(EnvConcurrency, cfg.Concurrency); err != nil {
		return cfg, err
	}
	if cfg.PriceCacheDays, err = positiveInt(EnvPriceCacheDays, cfg.PriceCacheDays); err != nil {
		return cfg, err
	}
	if cfg.Markup, err = positiveFloat(EnvMarkup, cfg.Markup); err != nil {
		return cfg, err
	}
	if cfg.PriceFloor, err = positiveFloat(EnvPriceFloor, cfg.PriceFloor); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func positiveInt(env string, def int) (int, error) {
	v := os.Getenv(env)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def, fmt.Errorf("%s must be a positive integer, got %q", env, v)
	}
	return n, nil
}

func positiveFloat(env string, def float64) (float64, error) {
	v := os.Getenv(env)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return def, fmt.Errorf("%s must be a positive number, got %q", env, v)
	}
	return f, nil
}

// CheckRequired returns the names of required variables that are not set.
func CheckRequired() []string {
	var missing []string
	for _, v := range RequiredEnvVars {
		if os.Getenv(v) == "" {
			missing = append(missing, v)
		}
	}
	return missing
}

// Dir returns the application's config directory, creating it if needed.
func Dir() (string, error) {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	configDir := filepath.Join(configBase, AppName)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// FilePath returns the full path to the config file.
func FilePath() (string, error) {
	configDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, EnvFileName), nil
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
// Variables already set in the environment win.
func LoadEnvFile() {
	configPath, err := FilePath()
	if err != nil {
		return
	}
	_ = godotenv.Load(configPath)
}

// WriteEnvFile merges values into the config file at path and returns the
// written values. The file holds API keys so it is only readable by the
// owner.
func WriteEnvFile(path string, values map[string]string) (map[string]string, error) {
	merged := map[string]string{}
	if existing, err := godotenv.Read(path); err == nil {
		merged = existing
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	for k, v := range values {
		merged[k] = v
	}

	content, err := godotenv.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, []byte(content+"\n"), 0600); err != nil {
		return nil, fmt.Errorf("failed to write config file: %w", err)
	}
	return merged, nil
}
