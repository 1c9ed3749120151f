// Package logging configures the process-wide zap logger used for the
// CLI's --verbose diagnostic trace. Decoders and sinks never log
// directly; they return errors and let callers in cmd/ntfsforensics
// decide what to report, matching the non-intrusive logging style of
// this package's own callers.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init installs the process-wide logger. When verbose is false the
// logger discards everything below warn level, so a plain run stays
// quiet on stdout/stderr.
func Init(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// Sugar returns the process-wide sugared logger, matching the
// zap.L().Sugar() idiom used wherever a component needs to log without
// holding its own logger reference.
func Sugar() *zap.SugaredLogger {
	return zap.L().Sugar()
}
