package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Level is an alias for slog.Level
type Level = slog.Level

const (
	LevelTrace   = slog.Level(-8)
	LevelDebug   = slog.LevelDebug
	LevelInfo    = slog.LevelInfo
	LevelWarning = slog.LevelWarn
	LevelError   = slog.LevelError
	LevelFatal   = slog.Level(12)
)

// Options configures the process logger.
type Options struct {
	Level       string // TRACE, DEBUG, INFO, WARN, ERROR, FATAL
	SampleRate  int    // log 1 in SampleRate warnings/errors; <= 1 logs all
	OTEL        bool   // export through the OpenTelemetry log bridge
	ServiceName string
	Output      io.Writer // JSON destination, stdout when nil
}

var (
	Logger       *slog.Logger
	sampleRate   atomic.Int32
	programLevel = new(slog.LevelVar)
	shutdownFunc func(context.Context) error
)

// Counters are incremented on every call, whether or not the line is sampled.
var (
	TotalErrors              atomic.Int64
	TotalWarnings            atomic.Int64
	Total5xxErrors           atomic.Int64
	Total4xxErrors           atomic.Int64
	Total400Errors           atomic.Int64
	Total404Errors           atomic.Int64
	SlowRequests             atomic.Int64
	UnknownPredictorRequests atomic.Int64
	InvalidDimensionRequests atomic.Int64
	PredictionsServed        atomic.Int64
)

func init() {
	programLevel.Set(slog.LevelInfo)
	sampleRate.Store(1)
	setupJSONLogging(os.Stdout)
}

// Setup replaces the process logger. When OTEL setup fails it falls back to
// JSON and returns the error so the caller can report it.
func Setup(ctx context.Context, opts Options) error {
	level, err := ParseLevel(opts.Level)
	if err != nil && opts.Level != "" {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
	programLevel.Set(level)

	if opts.SampleRate > 0 {
		sampleRate.Store(int32(opts.SampleRate))
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	if !opts.OTEL {
		setupJSONLogging(out)
		return nil
	}

	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = "salarypredict"
	}

	shutdown, err := setupOTELLogging(ctx, serviceName)
	if err != nil {
		setupJSONLogging(out)
		return fmt.Errorf("OTEL logging unavailable, using JSON: %w", err)
	}
	shutdownFunc = shutdown
	return nil
}

func setupJSONLogging(out io.Writer) {
	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: programLevel})
	Logger = slog.New(handler)
	slog.SetDefault(Logger)
}

func setupOTELLogging(ctx context.Context, serviceName string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := otlploggrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)

	otelHandler := otelslog.NewHandler(
		serviceName,
		otelslog.WithLoggerProvider(loggerProvider),
	)

	Logger = slog.New(&levelHandler{level: programLevel, handler: otelHandler})
	slog.SetDefault(Logger)

	return loggerProvider.Shutdown, nil
}

// levelHandler filters records below level before the wrapped handler sees them
type levelHandler struct {
	level   slog.Leveler
	handler slog.Handler
}

func (h *levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.handler.Handle(ctx, r)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{level: h.level, handler: h.handler.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{level: h.level, handler: h.handler.WithGroup(name)}
}

// Shutdown flushes the OTEL exporter. It is a no-op in JSON mode.
func Shutdown(ctx context.Context) error {
	if shutdownFunc != nil {
		return shutdownFunc(ctx)
	}
	return nil
}

// SetLevel sets the minimum log level
func SetLevel(level slog.Level) {
	programLevel.Set(level)
}

// GetLevel returns the current minimum log level
func GetLevel() slog.Level {
	return programLevel.Level()
}

// ParseLevel converts a level name to slog.Level. Unknown names yield INFO and an error.
func ParseLevel(levelStr string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "", "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	case "FATAL":
		return LevelFatal, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s (defaulting to INFO)", levelStr)
	}
}

func shouldSample() bool {
	rate := sampleRate.Load()
	if rate <= 1 {
		return true
	}
	return rand.Intn(int(rate)) == 0
}

// Trace logs at trace level
func Trace(msg string, args ...any) {
	Logger.Log(context.Background(), LevelTrace, msg, args...)
}

// Debug logs at debug level
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs at info level
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn counts every warning and logs a sample of them.
func Warn(msg string, args ...any) {
	TotalWarnings.Add(1)
	if shouldSample() {
		Logger.Warn(msg, args...)
	}
}

// Error counts every error and logs a sample of them.
func Error(msg string, args ...any) {
	TotalErrors.Add(1)
	if shouldSample() {
		Logger.Error(msg, args...)
	}
}

// Fatal logs, flushes OTEL and exits with status 1.
func Fatal(msg string, args ...any) {
	Logger.Log(context.Background(), LevelFatal, msg, args...)
	if shutdownFunc != nil {
		_ = shutdownFunc(context.Background())
	}
	os.Exit(1)
}

// ErrorHttp5xx counts a server-side failure
func ErrorHttp5xx() {
	Total5xxErrors.Add(1)
	TotalErrors.Add(1)
}

// WarnHttp4xx counts a client error by status
func WarnHttp4xx(status int) {
	Total4xxErrors.Add(1)
	TotalWarnings.Add(1)

	switch status {
	case 400:
		Total400Errors.Add(1)
	case 404:
		Total404Errors.Add(1)
	}
}

// WarnSlowRequest counts a request over the slow threshold
func WarnSlowRequest() {
	SlowRequests.Add(1)
	TotalWarnings.Add(1)
}

// WarnUnknownPredictor counts a prediction for an unregistered model name
func WarnUnknownPredictor() {
	UnknownPredictorRequests.Add(1)
}

// WarnInvalidDimension counts an aggregation over an unsupported dimension
func WarnInvalidDimension() {
	InvalidDimensionRequests.Add(1)
}

// Stats is a point-in-time copy of the counters.
type Stats struct {
	TotalErrors              int64 `json:"total_errors"`
	TotalWarnings            int64 `json:"total_warnings"`
	Total5xxErrors           int64 `json:"total_5xx_errors"`
	Total4xxErrors           int64 `json:"total_4xx_errors"`
	Total400Errors           int64 `json:"total_400_errors"`
	Total404Errors           int64 `json:"total_404_errors"`
	SlowRequests             int64 `json:"slow_requests"`
	UnknownPredictorRequests int64 `json:"unknown_predictor_requests"`
	InvalidDimensionRequests int64 `json:"invalid_dimension_requests"`
	PredictionsServed        int64 `json:"predictions_served"`
}

// Snapshot reads every counter.
func Snapshot() Stats {
	return Stats{
		TotalErrors:              TotalErrors.Load(),
		TotalWarnings:            TotalWarnings.Load(),
		Total5xxErrors:           Total5xxErrors.Load(),
		Total4xxErrors:           Total4xxErrors.Load(),
		Total400Errors:           Total400Errors.Load(),
		Total404Errors:           Total404Errors.Load(),
		SlowRequests:             SlowRequests.Load(),
		UnknownPredictorRequests: UnknownPredictorRequests.Load(),
		InvalidDimensionRequests: InvalidDimensionRequests.Load(),
		PredictionsServed:        PredictionsServed.Load(),
	}
}
