package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	BackendQBittorrent = "qbittorrent"
	BackendEmbedded    = "embedded"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Telegram struct {
		Token    string
		UserID   int64
		Proxy    string
		SendRate float64
		Debug    bool
	}
	Downloader struct {
		Backend string
	}
	QBittorrent struct {
		Host     string
		Username string
		Password string
	}
	Render struct {
		Stylesheet string
		Output     string
		ChromePath string
		// Timeout is in seconds.
		Timeout int
	}
	Download struct {
		TempDir  string
		SavePath string
		DataDir  string
		Seed     bool
	}
	Server struct {
		Addr string
	}
	Log struct {
		Level string
	}
}

// Load reads configuration from environment variables and an optional config file.
// When path is empty, config.{yaml,json,toml} in the working directory is used if present.
func Load(path string) (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("MAGNETBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.userid", 0)
	v.SetDefault("telegram.proxy", "")
	v.SetDefault("telegram.sendrate", 20)
	v.SetDefault("telegram.debug", false)
	v.SetDefault("downloader.backend", BackendQBittorrent)
	v.SetDefault("qbittorrent.host", "")
	v.SetDefault("qbittorrent.username", "")
	v.SetDefault("qbittorrent.password", "")
	v.SetDefault("render.stylesheet", "table.css")
	v.SetDefault("render.output", "temp.png")
	v.SetDefault("render.chromepath", "")
	v.SetDefault("render.timeout", 30)
	v.SetDefault("download.tempdir", "temp")
	v.SetDefault("download.savepath", "")
	v.SetDefault("download.datadir", "data/downloads")
	v.SetDefault("download.seed", false)
	v.SetDefault("server.addr", "127.0.0.1:9090")
	v.SetDefault("log.level", "info")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		_ = v.ReadInConfig() // optional file
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Downloader.Backend = strings.ToLower(strings.TrimSpace(cfg.Downloader.Backend))

	return cfg, nil
}

// Validate reports every missing or malformed setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Telegram.Token) == "" {
		errs = append(errs, errors.New("telegram.token is required"))
	}
	if c.Telegram.UserID == 0 {
		errs = append(errs, errors.New("telegram.userid is required"))
	}
	if c.Telegram.SendRate <= 0 {
		errs = append(errs, errors.New("telegram.sendrate must be positive"))
	}
	return errors.Join(append(errs, c.ValidateBackend())...)
}

// ValidateBackend checks only what offline rendering needs: the download client,
// the renderer and logging.
func (c Config) ValidateBackend() error {
	var errs []error
	switch c.Downloader.Backend {
	case BackendQBittorrent:
		if strings.TrimSpace(c.QBittorrent.Host) == "" {
			errs = append(errs, errors.New("qbittorrent.host is required"))
		}
	case BackendEmbedded:
		if strings.TrimSpace(c.Download.DataDir) == "" {
			errs = append(errs, errors.New("download.datadir is required for the embedded backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("downloader.backend %q is not one of %s, %s",
			c.Downloader.Backend, BackendQBittorrent, BackendEmbedded))
	}

	if c.Render.Timeout <= 0 {
		errs = append(errs, errors.New("render.timeout must be positive"))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

func (c Config) RenderTimeout() time.Duration {
	return time.Duration(c.Render.Timeout) * time.Second
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
