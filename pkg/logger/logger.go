package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	mu    sync.RWMutex
	sugar = zap.NewNop().Sugar()
)

// Init builds the process-wide logger. Production emits JSON, everything
// else uses the colored development encoder.
func Init(env string) {
	var cfg zap.Config
	switch strings.ToLower(env) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Development = false
	}
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		z = zap.NewExample()
	}

	mu.Lock()
	sugar = z.Sugar()
	mu.Unlock()
}

// Sync flushes buffered entries.
func Sync() {
	_ = current().Sync()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debug(msg string, keysAndValues ...interface{}) {
	current().Debugw(msg, normalize(keysAndValues)...)
}

func Info(msg string, keysAndValues ...interface{}) {
	current().Infow(msg, normalize(keysAndValues)...)
}

func Warn(msg string, keysAndValues ...interface{}) {
	current().Warnw(msg, normalize(keysAndValues)...)
}

func Error(msg string, keysAndValues ...interface{}) {
	current().Errorw(msg, normalize(keysAndValues)...)
}

func Fatal(msg string, keysAndValues ...interface{}) {
	current().Fatalw(msg, normalize(keysAndValues)...)
}

// With returns a child logger carrying the given fields.
func With(keysAndValues ...interface{}) *zap.SugaredLogger {
	return current().With(normalize(keysAndValues)...)
}

// normalize lets callers pass a lone error or value without a key.
func normalize(kv []interface{}) []interface{} {
	if len(kv)%2 == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv)+1)
	if _, isErr := kv[0].(error); isErr {
		out = append(out, "error")
	} else {
		out = append(out, "detail")
	}
	return append(out, kv...)
}
