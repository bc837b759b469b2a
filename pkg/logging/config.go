package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/histfeed/histfeed/pkg/constants"
)

// Config describes how the default logger writes.
type Config struct {
	// Level is the minimum level to emit (trace..fatal, or "disabled").
	Level string

	// Format selects the encoding: "json", "console", or "auto" to pick
	// console at a terminal and json everywhere else.
	Format string

	// Output names the destination: "stderr", "stdout", "discard", or a
	// file path opened for append.
	Output string

	// TimeFormat is the console timestamp layout ("kitchen", "rfc3339",
	// "unix", or a Go layout string). JSON output always uses zerolog's
	// native timestamp.
	TimeFormat string

	// NoColor strips ANSI colors from console output.
	NoColor bool

	// AddCaller appends file:line to every event.
	AddCaller bool

	// Fields are static key/value pairs stamped on every event, e.g. a
	// run ID shared by all symbols of one retrieval.
	Fields map[string]any
}

// DefaultConfig returns the configuration used when nothing is set:
// info-level auto-format logging on stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
		Fields:     make(map[string]any),
	}
}

// envConfig builds a Config from the LOG_* environment variables, falling
// back to the defaults. DEBUG=1 is a shortcut for LOG_LEVEL=debug.
func envConfig() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Level = v
	} else if os.Getenv("DEBUG") != "" {
		cfg.Level = "debug"
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("LOG_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("LOG_TIME_FORMAT"); v != "" {
		cfg.TimeFormat = v
	}
	cfg.AddCaller = os.Getenv("LOG_CALLER") == "true"
	cfg.Fields = parseStaticFields(os.Getenv("LOG_FIELDS"))
	return cfg
}

// Configure rebuilds the default logger from cfg.
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}

// ConfigureFromEnv rebuilds the default logger from the LOG_* environment
// variables.
func ConfigureFromEnv() {
	Configure(envConfig())
}

// NewLoggerFromConfig builds a logger from cfg without installing it. The
// global zerolog level follows cfg.Level so child loggers created later
// inherit it.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(newWriter(cfg)).
		Level(level).
		With().
		Timestamp().
		Logger()

	if cfg.AddCaller || level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}

	if len(cfg.Fields) > 0 {
		zctx := logger.With()
		for k, v := range cfg.Fields {
			zctx = appendField(zctx, k, v)
		}
		logger = zctx.Logger()
	}

	return logger
}

// newWriter resolves cfg.Output to a destination and wraps it in a console
// writer when the effective format asks for one.
func newWriter(cfg *Config) io.Writer {
	var out io.Writer
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "discard", "none":
		out = io.Discard
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
		if err != nil {
			out = os.Stderr
		} else {
			out = f
		}
	}

	format := strings.ToLower(cfg.Format)
	if format == "" || format == "auto" {
		if isTerminal(out) {
			format = "console"
		} else {
			format = "json"
		}
	}

	switch format {
	case "console", "pretty":
		return consoleWriter(out, cfg)
	default:
		return out
	}
}

// consoleWriter wraps out in zerolog's human-readable writer.
func consoleWriter(out io.Writer, cfg *Config) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeLayout(cfg.TimeFormat),
		NoColor:    cfg.NoColor,
	}
}

// isTerminal reports whether out is a character device.
func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// parseLevel maps a level string to a zerolog level, accepting a few
// aliases zerolog's own parser does not. Unknown levels fall back to info.
func parseLevel(level string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(level))
	if l, err := zerolog.ParseLevel(s); err == nil && s != "" {
		return l
	}
	switch s {
	case "warning":
		return zerolog.WarnLevel
	case "none", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// namedLayouts maps the layout keywords accepted in Config.TimeFormat.
var namedLayouts = map[string]string{
	"kitchen":     time.Kitchen,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"unix":        "", // zerolog renders epoch seconds for an empty layout
	"epoch":       "",
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"stampmicro":  time.StampMicro,
	"stampnano":   time.StampNano,
}

// timeLayout resolves a TimeFormat keyword or custom Go layout, defaulting
// to kitchen time.
func timeLayout(format string) string {
	if layout, ok := namedLayouts[strings.ToLower(format)]; ok {
		return layout
	}
	if strings.Contains(format, "2006") || strings.Contains(format, "15:04") {
		return format
	}
	return time.Kitchen
}

// parseStaticFields parses "key=value,key=value" into a field map.
func parseStaticFields(raw string) map[string]any {
	fields := make(map[string]any)
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return fields
}
