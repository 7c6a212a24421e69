package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
)

// Options 日志目录与级别
type Options struct {
	Dir    string
	Level  string
	Stdout bool
}

// NewLogger 按类型建立按天切割的日志，保留 7 天
func NewLogger(logType string, opt Options) *logrus.Logger {
	log := logrus.New()
	dir := opt.Dir
	if dir == "" {
		dir = "./logs"
	}
	logPath := filepath.Join(dir, logType)
	_ = os.MkdirAll(logPath, 0755)

	var out io.Writer = os.Stdout
	writer, err := rotatelogs.New(
		logPath+"/"+logType+".log.%Y-%m-%d",
		rotatelogs.WithLinkName(logPath+"/"+logType+".log"),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
	if err == nil {
		out = writer
		if opt.Stdout {
			out = io.MultiWriter(writer, os.Stdout)
		}
	}

	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			return f.Function, fmt.Sprintf("%s:%d", f.File, f.Line)
		},
	})
	log.SetLevel(ParseLevel(opt.Level))

	return log
}

// ParseLevel 无法识别时退回 info
func ParseLevel(s string) logrus.Level {
	lv, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel
	}
	return lv
}

// Discard 测试或未配置时使用
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
