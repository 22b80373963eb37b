// Package logger builds the zerolog logger used across the bot.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

const timeLayout = "15:04:05"

// New returns a console logger writing human-readable lines to stdout.
func New(level string) (zerolog.Logger, error) {
	return NewWithWriter(level, zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: timeLayout,
	})
}

// NewWithWriter is New with an explicit sink. Tests pass a buffer to get JSON lines.
func NewWithWriter(level string, w io.Writer) (zerolog.Logger, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// BotLogger adapts a zerolog.Logger to the tgbotapi logger interface.
type BotLogger struct {
	log zerolog.Logger
}

func NewBotLogger(log zerolog.Logger) *BotLogger {
	return &BotLogger{log: log.With().Str("component", "tgbotapi").Logger()}
}

func (b *BotLogger) Println(v ...interface{}) {
	b.log.Debug().Msg(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (b *BotLogger) Printf(format string, v ...interface{}) {
	b.log.Debug().Msgf(format, v...)
}
