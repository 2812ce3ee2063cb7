// Package log 提供基于 zerolog 的全局日志器, 控制台输出加可选的文件轮转 (lumberjack).
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yeisme/ingestvault/pkg/configs"
)

var (
	logger   zerolog.Logger
	initOnce sync.Once
)

// Init 初始化全局 logger, 重复调用无效果.
func Init() {
	initOnce.Do(initLogger)
}

// Logger 返回全局 logger, 首次使用时自动初始化.
func Logger() *zerolog.Logger {
	initOnce.Do(initLogger)
	return &logger
}

func initLogger() {
	cfg := configs.GetConfig()

	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q, defaulting to info\n", cfg.Log.Level)
		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	builder := zerolog.New(buildOutput(cfg.Log)).With()
	if cfg.Server.Debug {
		builder = builder.Caller().Stack()
	}

	logger = builder.Timestamp().Logger()
	log.Logger = logger
}

// buildOutput 组装输出: 人类可读的 stderr, 加可选的轮转文件.
func buildOutput(cfg configs.LogConfig) io.Writer {
	console := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.TimeFormat = time.Kitchen
	})

	if !cfg.EnableFile {
		return console
	}

	return io.MultiWriter(console, &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})
}

// GinWriter 把 gin 的文本日志行转发为 zerolog 事件.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

func NewGinWriter(logger *zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

func (w *GinWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))

	switch w.level {
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		w.logger.Error().Msg(msg)
	case zerolog.WarnLevel:
		w.logger.Warn().Msg(msg)
	default:
		w.logger.Info().Msg(msg)
	}

	return len(p), nil
}
