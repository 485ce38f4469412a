package logger

import (
	"os"

	"go.uber.org/zap"
)

var log *zap.SugaredLogger

func init() {
	var config zap.Config

	env := os.Getenv("LOG_ENV")
	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	base, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	log = base.Sugar()
}

func Info(msg string, keysAndValues ...any) {
	log.Infow(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...any) {
	log.Warnw(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...any) {
	log.Errorw(msg, keysAndValues...)
}

func Debug(msg string, keysAndValues ...any) {
	log.Debugw(msg, keysAndValues...)
}

func Fatal(err error, keysAndValues ...any) {
	log.Fatalw(err.Error(), keysAndValues...)
}

func Sync() {
	_ = log.Sync()
}
