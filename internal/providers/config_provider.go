package providers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"ytmeta/internal/structures"
)

const AppName = "PlaylistMetaArchiver"

func setDefaults(v *viper.Viper) {
	v.SetDefault("root", "yt_meta_dump")
	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 8080)
	v.SetDefault("persistence.filePath", "db.json")
	v.SetDefault("persistence.saveInterval", "30s")
	v.SetDefault("persistence.backup", true)
	v.SetDefault("persistence.backupDir", "backups")
	v.SetDefault("archive.dumpsDir", "dumps")
	v.SetDefault("archive.htmlDir", "html")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("logger.dir", "logs")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 16)
	v.SetDefault("cache.ttl", "60s")
}

// NewConfigProvider reads the YAML config named by the flags. Without a config
// path only defaults and environment overrides apply. Relative paths are
// resolved against root.
func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	setDefaults(v)

	_ = v.BindEnv("root", "YTMETA_ROOT")
	_ = v.BindEnv("logger.level", "YTMETA_LOG_LEVEL")
	_ = v.BindEnv("persistence.saveInterval", "YTMETA_SAVE_INTERVAL")
	_ = v.BindEnv("cache.enabled", "YTMETA_CACHE_ENABLED")
	_ = v.BindEnv("cache.size", "YTMETA_CACHE_SIZE")

	if flags.Root != "" {
		v.Set("root", flags.Root)
	}

	if flags.ConfigPath != "" {
		filename := filepath.Base(flags.ConfigPath)
		v.AddConfigPath(filepath.Dir(flags.ConfigPath))
		v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	resolvePaths(&conf)

	if err := NewCnfValidator(&conf).Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(conf.Logger.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create log dir: %w", err)
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func resolvePaths(conf *structures.Config) {
	under := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(conf.Root, p)
	}
	conf.Persistence.FilePath = under(conf.Persistence.FilePath)
	conf.Persistence.BackupDir = under(conf.Persistence.BackupDir)
	conf.Archive.DumpsDir = under(conf.Archive.DumpsDir)
	conf.Archive.HtmlDir = under(conf.Archive.HtmlDir)
	conf.Logger.Dir = under(conf.Logger.Dir)
}
