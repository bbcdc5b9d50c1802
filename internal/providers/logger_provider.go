package providers

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ytmeta/internal/structures"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeIngest
	TypeReport
	TypeGet
	TypePost
)

var logTypeNames = map[TypeEnum]string{
	TypeApp:    "app",
	TypeIngest: "ingest",
	TypeReport: "report",
	TypeGet:    "get",
	TypePost:   "post",
}

func (t TypeEnum) String() string {
	if name, ok := logTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// GetLogTypeByRequestType maps an HTTP method to its log category.
func GetLogTypeByRequestType(method string) TypeEnum {
	if strings.EqualFold(method, "POST") {
		return TypePost
	}
	return TypeGet
}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

// LogProvider writes each log category to its own file under logger.dir.
type LogProvider struct {
	loggers map[TypeEnum]zerolog.Logger
	files   []*os.File
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}
	if conf.Debug {
		level = zerolog.DebugLevel
	}
	mode := fs.FileMode(conf.Logger.Mode)
	if mode == 0 {
		mode = 0644
	}

	var console io.Writer
	if conf.Debug || conf.Logger.Console {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}
	}

	lp := &LogProvider{loggers: make(map[TypeEnum]zerolog.Logger, len(logTypeNames))}
	for t, name := range logTypeNames {
		file, err := os.OpenFile(filepath.Join(conf.Logger.Dir, name+".log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, mode)
		if err != nil {
			lp.Close()
			return nil, fmt.Errorf("unable to open %s log: %w", name, err)
		}
		lp.files = append(lp.files, file)

		var w io.Writer = file
		if console != nil {
			w = zerolog.MultiLevelWriter(file, console)
		}
		lp.loggers[t] = zerolog.New(w).Level(level).With().Timestamp().Str("type", name).Logger()
	}
	return lp, nil
}

func (lp *LogProvider) get(t TypeEnum) *zerolog.Logger {
	l, ok := lp.loggers[t]
	if !ok {
		l = lp.loggers[TypeApp]
	}
	return &l
}

func (lp *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	lp.get(t).Error().Msgf(format, args...)
}

func (lp *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	lp.get(t).Warn().Msgf(format, args...)
}

func (lp *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	lp.get(t).Debug().Msgf(format, args...)
}

func (lp *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	lp.get(t).Info().Msgf(format, args...)
}

func (lp *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	lp.get(t).Fatal().Msgf(format, args...)
}

func (lp *LogProvider) Close() {
	for _, f := range lp.files {
		_ = f.Close()
	}
	lp.files = nil
}
