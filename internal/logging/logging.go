package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const LogFile = "simcheck.log"

// Init points the global zerolog logger at a rotating file in dir, plus any
// extra writers such as a console.
func Init(dir, level string, writers ...io.Writer) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	logWriters := []io.Writer{&lumberjack.Logger{
		Filename:   filepath.Join(dir, LogFile),
		MaxSize:    1,
		MaxBackups: 2,
	}}
	logWriters = append(logWriters, writers...)

	zerolog.SetGlobalLevel(ParseLevel(level))
	log.Logger = zerolog.New(io.MultiWriter(logWriters...)).With().Timestamp().Logger()
	return nil
}

func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func Console(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
}
