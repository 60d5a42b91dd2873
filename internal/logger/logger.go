package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base = zap.NewNop()

// Init builds the process-wide structured logger. Production gets JSON on
// stdout; everything else gets a colored development config.
func Init(env string) error {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.Encoding = "json"
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	built, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return err
	}

	base = built
	return nil
}

// L returns the shared sugared logger.
func L() *zap.SugaredLogger {
	return base.Sugar()
}

// Sync flushes buffered log entries, for use on shutdown.
func Sync() {
	_ = base.Sync()
}
