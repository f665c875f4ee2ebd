package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"local"`
	AdminToken string     `yaml:"admin_token" env:"ADMIN_TOKEN" env-required:"true"`
	HTTPServer HTTPServer `yaml:"http_server"`
	DB         DB         `yaml:"db"`
	Cache      Cache      `yaml:"cache"`
	Scratch    Scratch    `yaml:"scratch"`
	Export     Export     `yaml:"export"`
	Images     Images     `yaml:"images"`
	Converters Converters `yaml:"converters"`
}

type HTTPServer struct {
	Address        string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout        time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ExportTimeout  time.Duration `yaml:"export_timeout" env-default:"5m"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" env-default:"10485760"`
}

type DB struct {
	Addr     string `yaml:"addr" env:"DB_ADDR" env-default:"localhost"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DB       string `yaml:"db" env:"DB_NAME" env-default:"mdexport"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
}

type Cache struct {
	Addr         string        `yaml:"addr" env:"CACHE_ADDR" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"CACHE_PASSWORD"`
	DB           int           `yaml:"db" env:"CACHE_DB" env-default:"0"`
	SessionTTL   time.Duration `yaml:"session_ttl" env-default:"24h"`
	DocumentsTTL time.Duration `yaml:"documents_ttl" env-default:"10m"`
}

type Scratch struct {
	Path string `yaml:"path" env:"SCRATCH_PATH" env-default:"./var/scratch"`
}

type Export struct {
	ConverterTimeout time.Duration `yaml:"converter_timeout" env-default:"2m"`
	ArtifactTTL      time.Duration `yaml:"artifact_ttl" env-default:"1h"`
	SweepInterval    time.Duration `yaml:"sweep_interval" env-default:"5m"`
	FrameDuration    time.Duration `yaml:"frame_duration" env-default:"5s"`
	MaxImageWidth    int           `yaml:"max_image_width" env-default:"650"`
	JPEGQuality      int           `yaml:"jpeg_quality" env-default:"85"`
	PageSize         string        `yaml:"page_size" env-default:"A4"`
	Stylesheet       string        `yaml:"stylesheet" env:"EXPORT_STYLESHEET"`
}

type Images struct {
	MaxSizeBytes int64 `yaml:"max_size_bytes" env-default:"5242880"`
}

type Converters struct {
	Marp        string `yaml:"marp" env:"MARP_BIN" env-default:"marp"`
	FFmpeg      string `yaml:"ffmpeg" env:"FFMPEG_BIN" env-default:"ffmpeg"`
	Wkhtmltopdf string `yaml:"wkhtmltopdf" env:"WKHTMLTOPDF_BIN" env-default:"wkhtmltopdf"`
}

// MustLoad reads an optional .env file, then the YAML config named by the
// -config flag or CONFIG_PATH, with environment overrides.
func MustLoad() *Config {
	_ = godotenv.Load()

	cfg, err := Load(configPath())
	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	return &cfg, nil
}

func configPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
