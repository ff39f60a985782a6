package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/miniapp-telemetry/internal/adapters/backend/httpapi"
	sessionstore "github.com/bnema/miniapp-telemetry/internal/adapters/storage/session"
	"github.com/bnema/miniapp-telemetry/internal/adapters/transport"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".miniapp-telemetry"
	envPrefix  = "MT"
	dotEnvFile = ".env"
)

const (
	keyBaseURL            = "backend.base_url"
	keyRegisterPath       = "backend.register_path"
	keyStartPath          = "backend.start_path"
	keyEndPath            = "backend.end_path"
	keyTimeout            = "backend.timeout"
	keyRetries            = "backend.retries"
	keyContract           = "backend.contract"
	keyGameCode           = "backend.game_code"
	keyEndStatus          = "backend.end_status"
	keyForwardDiagnostics = "backend.forward_diagnostics"
	keyStorageDir         = "storage.dir"
	keySessionKey         = "storage.session_key"
	keyLogLevel           = "log.level"
	keyLogFormat          = "log.format"
)

type Config struct {
	Backend BackendConfig
	Storage StorageConfig
	Log     LogConfig
	// Path is the config file that was read, empty when none was found.
	Path string
}

type BackendConfig struct {
	BaseURL            string
	RegisterPath       string
	StartPath          string
	EndPath            string
	Timeout            time.Duration
	Retries            int
	Contract           httpapi.Contract
	GameCode           string
	EndStatus          string
	ForwardDiagnostics bool
}

type StorageConfig struct {
	Dir        string
	SessionKey string
}

type LogConfig struct {
	Level  string
	Format string
}

func (b BackendConfig) API() httpapi.API {
	return httpapi.API{
		BaseURL:      b.BaseURL,
		RegisterPath: b.RegisterPath,
		StartPath:    b.StartPath,
		EndPath:      b.EndPath,
	}
}

// Dir is where the config file and default storage live.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, configDir), nil
}

// Load reads defaults, then the TOML config file, then a .env file in the
// working directory, then MT_* environment variables.
func Load(cfg *viper.Viper) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", dotEnvFile, err)
	}

	setDefaults(cfg, dir)
	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(dir)
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	err = cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if used := cfg.ConfigFileUsed(); used != "" {
		if _, err := ReadVersion(used); err != nil {
			return Config{}, err
		}
	}

	contract, err := httpapi.ParseContract(cfg.GetString(keyContract))
	if err != nil {
		return Config{}, err
	}

	loaded := Config{
		Backend: BackendConfig{
			BaseURL:            strings.TrimSpace(cfg.GetString(keyBaseURL)),
			RegisterPath:       cfg.GetString(keyRegisterPath),
			StartPath:          cfg.GetString(keyStartPath),
			EndPath:            cfg.GetString(keyEndPath),
			Timeout:            cfg.GetDuration(keyTimeout),
			Retries:            cfg.GetInt(keyRetries),
			Contract:           contract,
			GameCode:           cfg.GetString(keyGameCode),
			EndStatus:          cfg.GetString(keyEndStatus),
			ForwardDiagnostics: cfg.GetBool(keyForwardDiagnostics),
		},
		Storage: StorageConfig{
			Dir:        cfg.GetString(keyStorageDir),
			SessionKey: cfg.GetString(keySessionKey),
		},
		Log: LogConfig{
			Level:  cfg.GetString(keyLogLevel),
			Format: cfg.GetString(keyLogFormat),
		},
		Path: cfg.ConfigFileUsed(),
	}

	if err := loaded.Validate(); err != nil {
		return Config{}, err
	}

	return loaded, nil
}

func setDefaults(cfg *viper.Viper, dir string) {
	cfg.SetDefault(keyBaseURL, "")
	cfg.SetDefault(keyRegisterPath, httpapi.DefaultRegisterPath)
	cfg.SetDefault(keyStartPath, httpapi.DefaultStartPath)
	cfg.SetDefault(keyEndPath, httpapi.DefaultEndPath)
	cfg.SetDefault(keyTimeout, transport.DefaultTimeout)
	cfg.SetDefault(keyRetries, transport.DefaultRetries)
	cfg.SetDefault(keyContract, string(httpapi.ContractTimestamp))
	cfg.SetDefault(keyGameCode, "")
	cfg.SetDefault(keyEndStatus, "")
	cfg.SetDefault(keyForwardDiagnostics, true)
	cfg.SetDefault(keyStorageDir, filepath.Join(dir, "storage"))
	cfg.SetDefault(keySessionKey, sessionstore.DefaultKey)
	cfg.SetDefault(keyLogLevel, "info")
	cfg.SetDefault(keyLogFormat, "console")
}

// Validate checks values that would otherwise fail late. An empty base URL
// is allowed so offline commands keep working; network commands check it.
func (c Config) Validate() error {
	if c.Backend.BaseURL != "" {
		parsed, err := url.Parse(c.Backend.BaseURL)
		if err != nil {
			return fmt.Errorf("parse backend base url: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return errors.New("backend base url must use http or https")
		}
		if parsed.Host == "" {
			return errors.New("backend base url host is required")
		}
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend timeout must be positive, got %s", c.Backend.Timeout)
	}
	if c.Backend.Retries < 0 {
		return fmt.Errorf("backend retries must not be negative, got %d", c.Backend.Retries)
	}
	if strings.TrimSpace(c.Storage.Dir) == "" {
		return errors.New("storage dir is empty")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	return nil
}

var ErrBaseURLMissing = errors.New("backend base url is not configured (set backend.base_url or MT_BACKEND_BASE_URL)")

func (c Config) RequireBackend() error {
	if c.Backend.BaseURL == "" {
		return ErrBaseURLMissing
	}
	return nil
}
