package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	Root       string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `mapstructure:"host" yaml:"host" validate:"required"`
	Port int    `mapstructure:"port" yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `mapstructure:"filePath" yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `mapstructure:"saveInterval" yaml:"saveInterval" validate:"required|min:1"`
	Compress     bool          `mapstructure:"compress" yaml:"compress"`
	Backup       bool          `mapstructure:"backup" yaml:"backup"`
	BackupDir    string        `mapstructure:"backupDir" yaml:"backupDir"`
}

type ArchiveConfig struct {
	DumpsDir string `mapstructure:"dumpsDir" yaml:"dumpsDir" validate:"required|unixPath"`
	HtmlDir  string `mapstructure:"htmlDir" yaml:"htmlDir" validate:"required|unixPath"`
}

type LoggerConfig struct {
	Level   string `mapstructure:"level" yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode    uint32 `mapstructure:"mode" yaml:"mode" validate:"required|uint"`
	Dir     string `mapstructure:"dir" yaml:"dir" validate:"required|unixPath"`
	Console bool   `mapstructure:"console" yaml:"console"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	Size    int           `mapstructure:"size" yaml:"size"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	Root        string        `mapstructure:"root" yaml:"root" validate:"required|unixPath"`
	WebServer   Server        `mapstructure:"webServer" yaml:"webServer"`
	Persistence Persistence   `mapstructure:"persistence" yaml:"persistence"`
	Archive     ArchiveConfig `mapstructure:"archive" yaml:"archive"`
	Logger      LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Cache       CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Metrics     MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}
