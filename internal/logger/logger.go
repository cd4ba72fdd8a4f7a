package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	pkgctx "github.com/baechuer/sports-portal/services/auth-service/internal/pkg/context"
)

var Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type Options struct {
	Level   string // zerolog level name, default "info"
	Format  string // "json" or "console", default "console"
	Service string
}

func Init(opts Options) {
	InitWithWriter(os.Stdout, opts)
}

func InitWithWriter(w io.Writer, opts Options) {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	if opts.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(w).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	Logger = ctx.Logger().Level(level)

	// set global
	zlog.Logger = Logger
}

// WithCtx returns the package logger tagged with the request ID carried by
// ctx, if any.
func WithCtx(ctx context.Context) *zerolog.Logger {
	l := Logger
	if id := pkgctx.GetRequestID(ctx); id != "" {
		l = l.With().Str("request_id", id).Logger()
	}
	return &l
}
