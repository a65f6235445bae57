package observability

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/medconsult/consultation-service/internal/config"
)

// NewLogger builds the process logger. Every entry carries the service name, version and
// environment so logs from several deployments can share one sink.
func NewLogger(cfg config.LoggerConfig, app config.AppConfig) (*zap.Logger, error) {
	return newLogger(cfg, app, zapcore.Lock(os.Stdout)), nil
}

func newLogger(cfg config.LoggerConfig, app config.AppConfig, out zapcore.WriteSyncer) *zap.Logger {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zapcore.InfoLevel
	}

	core := zapcore.NewCore(newEncoder(cfg.Format), out, zap.NewAtomicLevelAt(level))
	if cfg.SampleInitial > 0 {
		thereafter := max(cfg.SampleThereafter, 1)
		core = zapcore.NewSamplerWithOptions(core, time.Second, cfg.SampleInitial, thereafter)
	}

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	).With(
		zap.String("service", app.Name),
		zap.String("version", app.Version),
		zap.String("env", app.Env),
	)
}

// newEncoder returns a JSON encoder, or a colored console one for local runs.
func newEncoder(format string) zapcore.Encoder {
	enc := zap.NewProductionEncoderConfig()
	enc.MessageKey = "message"
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeDuration = zapcore.MillisDurationEncoder

	if format == "console" {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(enc)
	}
	return zapcore.NewJSONEncoder(enc)
}
