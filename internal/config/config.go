package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/docker/go-units"
)

// Config represents the main configuration for salli.
type Config struct {
	HostID     string           `toml:"host_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Database   DatabaseConfig   `toml:"database"`
	Store      StoreConfig      `toml:"store"`
	Encryption EncryptionConfig `toml:"encryption"`
	Prober     ProberConfig     `toml:"prober"`
	Download   DownloadConfig   `toml:"download"`
	Archive    ArchiveConfig    `toml:"archive"`
}

// DatabaseConfig represents configuration for the acquisition ledger.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// StoreConfig represents configuration for the content store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StoreConfig struct {
	Type string `toml:"type"` // "filesystem", "memory", or "s3"

	// MaxObjectSize is a human size ("200MB"). Empty means unlimited.
	MaxObjectSize string `toml:"max_object_size,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket       string `toml:"s3_bucket,omitempty"`
	S3Prefix       string `toml:"s3_prefix,omitempty"`
	S3Region       string `toml:"s3_region,omitempty"`
	S3Endpoint     string `toml:"s3_endpoint,omitempty"`
	S3AccessKey    string `toml:"s3_access_key,omitempty"`
	S3SecretKey    string `toml:"s3_secret_key,omitempty"`
	S3StagingDir   string `toml:"s3_staging_dir,omitempty"`
	S3UsePathStyle bool   `toml:"s3_use_path_style,omitempty"`
}

// MaxObjectBytes parses MaxObjectSize. Zero means no limit.
func (c StoreConfig) MaxObjectBytes() (int64, error) {
	if c.MaxObjectSize == "" {
		return 0, nil
	}
	n, err := units.FromHumanSize(c.MaxObjectSize)
	if err != nil {
		return 0, fmt.Errorf("invalid max_object_size %q: %w", c.MaxObjectSize, err)
	}
	return n, nil
}

// EncryptionConfig holds paths to the age key pair used for ledger snapshots.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default), "test", or "none"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// ProberConfig holds archive existence probing settings. Times are in seconds.
type ProberConfig struct {
	DelayMin     float64 `toml:"delay_min"`
	DelayMax     float64 `toml:"delay_max"`
	BatchSize    int     `toml:"batch_size"`
	BatchPause   float64 `toml:"batch_pause"`
	IdleInterval float64 `toml:"idle_interval"`
	FetchSize    int     `toml:"fetch_size"`
}

// DownloadConfig holds download loop settings. Times are in seconds.
type DownloadConfig struct {
	DelayMin         float64 `toml:"delay_min"`
	DelayMax         float64 `toml:"delay_max"`
	FailureThreshold int     `toml:"failure_threshold"`
	TempDir          string  `toml:"temp_dir,omitempty"`
}

// ArchiveConfig describes the remote archive.
type ArchiveConfig struct {
	Host           string  `toml:"host"`
	UploadEndpoint string  `toml:"upload_endpoint"`
	AccessKey      string  `toml:"access_key,omitempty"`
	SecretKey      string  `toml:"secret_key,omitempty"`
	Timeout        float64 `toml:"timeout"` // seconds
	UserAgent      string  `toml:"user_agent"`
}

// Seconds converts a config value in seconds to a duration.
func Seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// NewConfig creates a new Config with the provided values and default settings.
func NewConfig(hostID, baseDir string) *Config {
	return &Config{
		HostID:  hostID,
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Store: StoreConfig{
			Type:   "filesystem",
			FSRoot: filepath.Join(baseDir, "store"),
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "salli.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "salli.key"),
		},
		Prober: ProberConfig{
			DelayMin:     5,
			DelayMax:     15,
			BatchSize:    50,
			BatchPause:   60,
			IdleInterval: 300,
			FetchSize:    100,
		},
		Download: DownloadConfig{
			DelayMin:         5,
			DelayMax:         15,
			FailureThreshold: 3,
		},
		Archive: ArchiveConfig{
			Host:           "https://archive.org",
			UploadEndpoint: "https://s3.us.archive.org",
			Timeout:        30,
			UserAgent:      "salli/1.0",
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// The file can hold archive and S3 credentials.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
