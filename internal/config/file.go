package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	currentSchemaVersion = 1
	configDirMode        = 0o700
	configFileMode       = 0o600
	tempFilePattern      = ".config-*.toml"
)

var ErrConfigExists = errors.New("config file already exists")

type fileSchema struct {
	Version int           `toml:"version"`
	Backend backendSchema `toml:"backend"`
	Storage storageSchema `toml:"storage"`
	Log     logSchema     `toml:"log"`
}

type backendSchema struct {
	BaseURL            string `toml:"base_url"`
	RegisterPath       string `toml:"register_path"`
	StartPath          string `toml:"start_path"`
	EndPath            string `toml:"end_path"`
	Timeout            string `toml:"timeout"`
	Retries            int    `toml:"retries"`
	Contract           string `toml:"contract"`
	GameCode           string `toml:"game_code"`
	EndStatus          string `toml:"end_status"`
	ForwardDiagnostics bool   `toml:"forward_diagnostics"`
}

type storageSchema struct {
	Dir        string `toml:"dir"`
	SessionKey string `toml:"session_key"`
}

type logSchema struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func toSchema(cfg Config) fileSchema {
	return fileSchema{
		Version: currentSchemaVersion,
		Backend: backendSchema{
			BaseURL:            cfg.Backend.BaseURL,
			RegisterPath:       cfg.Backend.RegisterPath,
			StartPath:          cfg.Backend.StartPath,
			EndPath:            cfg.Backend.EndPath,
			Timeout:            cfg.Backend.Timeout.String(),
			Retries:            cfg.Backend.Retries,
			Contract:           string(cfg.Backend.Contract),
			GameCode:           cfg.Backend.GameCode,
			EndStatus:          cfg.Backend.EndStatus,
			ForwardDiagnostics: cfg.Backend.ForwardDiagnostics,
		},
		Storage: storageSchema{
			Dir:        cfg.Storage.Dir,
			SessionKey: cfg.Storage.SessionKey,
		},
		Log: logSchema{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
		},
	}
}

// DefaultPath is ~/.miniapp-telemetry/config.toml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configName+"."+configType), nil
}

// Write stores cfg as TOML at path. An existing file is only replaced when
// force is set.
func Write(path string, cfg Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := Encode(cfg)
	if err != nil {
		return err
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}

	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	cleanup = false
	return nil
}

// ReadVersion reports the schema version of the file at path. Files written
// by a newer release are rejected.
func ReadVersion(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read config file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("decode config file: %w", err)
	}
	if file.Version == 0 {
		file.Version = currentSchemaVersion
	}
	if file.Version > currentSchemaVersion {
		return 0, fmt.Errorf("unsupported config schema version %d (current %d)", file.Version, currentSchemaVersion)
	}

	return file.Version, nil
}

// Encode renders cfg in the on-disk TOML layout.
func Encode(cfg Config) ([]byte, error) {
	data, err := toml.Marshal(toSchema(cfg))
	if err != nil {
		return nil, fmt.Errorf("encode config file: %w", err)
	}
	return data, nil
}
