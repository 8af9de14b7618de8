// Package logging provides structured logging channels for the analytics
// engine, one slog logger per subsystem.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Channel represents a logical logging channel for different system components
type Channel string

const (
	// System channels
	ChannelSystem   Channel = "system"
	ChannelStartup  Channel = "startup"
	ChannelShutdown Channel = "shutdown"

	// Engine channels
	ChannelAuth      Channel = "auth"      // Admin authentication
	ChannelEvents    Channel = "events"    // Event ingestion
	ChannelChat      Channel = "chat"      // Chat session lifecycle
	ChannelAnalytics Channel = "analytics" // Report computation
	ChannelStore     Channel = "store"     // In-memory store operations

	// Infrastructure channels
	ChannelPersist Channel = "persistence" // Snapshot load/save
	ChannelGeo     Channel = "geo"         // Geolocation lookups
	ChannelEmail   Channel = "email"       // Lead notification email
	ChannelLive    Channel = "live"        // Live dashboard stream

	// Monitoring channels
	ChannelPerf  Channel = "performance"
	ChannelAlert Channel = "alert"
	ChannelDebug Channel = "debug"
)

// ChanneledLogger provides structured logging with multiple channels
type ChanneledLogger struct {
	channels map[Channel]*slog.Logger
	config   *LoggerConfig
	configMu sync.RWMutex
}

// LoggerConfig contains configuration options for the channeled logger
type LoggerConfig struct {
	OutputToFile    bool   `json:"outputToFile"`
	OutputToConsole bool   `json:"outputToConsole"`
	LogDirectory    string `json:"logDirectory"`
	JSONFormat      bool   `json:"jsonFormat"`
	IncludeSource   bool   `json:"includeSource"`

	DefaultLevel  slog.Level             `json:"defaultLevel"`
	ChannelLevels map[Channel]slog.Level `json:"channelLevels"`
}

// DefaultLoggerConfig returns a sensible default configuration
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		OutputToFile:    true,
		OutputToConsole: true,
		LogDirectory:    "logs",
		JSONFormat:      true,
		IncludeSource:   false,
		DefaultLevel:    slog.LevelInfo,
		ChannelLevels:   make(map[Channel]slog.Level),
	}
}

var allChannels = []Channel{
	ChannelSystem, ChannelStartup, ChannelShutdown,
	ChannelAuth, ChannelEvents, ChannelChat, ChannelAnalytics, ChannelStore,
	ChannelPersist, ChannelGeo, ChannelEmail, ChannelLive,
	ChannelPerf, ChannelAlert, ChannelDebug,
}

// NewChanneledLogger creates a new channeled logger with the given configuration
func NewChanneledLogger(config *LoggerConfig) (*ChanneledLogger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}

	logger := &ChanneledLogger{
		channels: make(map[Channel]*slog.Logger),
		config:   config,
	}

	if config.OutputToFile {
		if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	for _, channel := range allChannels {
		channelLogger, err := logger.createChannelLogger(channel)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger for channel %s: %w", channel, err)
		}
		logger.channels[channel] = channelLogger
	}

	return logger, nil
}

// NewDiscardLogger returns a logger that drops everything. Used by tests.
func NewDiscardLogger() *ChanneledLogger {
	handler := slog.NewTextHandler(io.Discard, nil)
	channels := make(map[Channel]*slog.Logger, len(allChannels))
	for _, channel := range allChannels {
		channels[channel] = slog.New(handler)
	}
	return &ChanneledLogger{
		channels: channels,
		config:   DefaultLoggerConfig(),
	}
}

// createChannelLogger creates a slog.Logger for a specific channel
func (cl *ChanneledLogger) createChannelLogger(channel Channel) (*slog.Logger, error) {
	cl.configMu.RLock()
	defer cl.configMu.RUnlock()

	level := cl.config.DefaultLevel
	if channelLevel, exists := cl.config.ChannelLevels[channel]; exists {
		level = channelLevel
	}

	var writers []io.Writer
	if cl.config.OutputToConsole {
		writers = append(writers, os.Stdout)
	}
	if cl.config.OutputToFile {
		filename := fmt.Sprintf("%s.log", string(channel))
		path := filepath.Join(cl.config.LogDirectory, filename)

		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		writers = append(writers, file)
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = os.Stdout
	case 1:
		writer = writers[0]
	default:
		writer = io.MultiWriter(writers...)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cl.config.IncludeSource,
	}

	var handler slog.Handler
	if cl.config.JSONFormat {
		handler = slog.NewJSONHandler(writer, handlerOpts)
	} else {
		handler = slog.NewTextHandler(writer, handlerOpts)
	}

	return slog.New(handler).With(slog.String("channel", string(channel))), nil
}

func (cl *ChanneledLogger) System() *slog.Logger    { return cl.channels[ChannelSystem] }
func (cl *ChanneledLogger) Startup() *slog.Logger   { return cl.channels[ChannelStartup] }
func (cl *ChanneledLogger) Shutdown() *slog.Logger  { return cl.channels[ChannelShutdown] }
func (cl *ChanneledLogger) Auth() *slog.Logger      { return cl.channels[ChannelAuth] }
func (cl *ChanneledLogger) Events() *slog.Logger    { return cl.channels[ChannelEvents] }
func (cl *ChanneledLogger) Chat() *slog.Logger      { return cl.channels[ChannelChat] }
func (cl *ChanneledLogger) Analytics() *slog.Logger { return cl.channels[ChannelAnalytics] }
func (cl *ChanneledLogger) Store() *slog.Logger     { return cl.channels[ChannelStore] }
func (cl *ChanneledLogger) Persist() *slog.Logger   { return cl.channels[ChannelPersist] }
func (cl *ChanneledLogger) Geo() *slog.Logger       { return cl.channels[ChannelGeo] }
func (cl *ChanneledLogger) Email() *slog.Logger     { return cl.channels[ChannelEmail] }
func (cl *ChanneledLogger) Live() *slog.Logger      { return cl.channels[ChannelLive] }
func (cl *ChanneledLogger) Perf() *slog.Logger      { return cl.channels[ChannelPerf] }
func (cl *ChanneledLogger) Alert() *slog.Logger     { return cl.channels[ChannelAlert] }
func (cl *ChanneledLogger) Debug() *slog.Logger     { return cl.channels[ChannelDebug] }

// GetChannel returns a logger for a specific channel
func (cl *ChanneledLogger) GetChannel(channel Channel) *slog.Logger {
	if logger, exists := cl.channels[channel]; exists {
		return logger
	}
	return cl.channels[ChannelSystem]
}

// WithOperation returns a logger with operation context
func (cl *ChanneledLogger) WithOperation(channel Channel, operation string) *slog.Logger {
	return cl.GetChannel(channel).With(slog.String("operation", operation))
}

// ParseLevel converts a level name into a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", name)
	}
}

// SetChannelLevel dynamically sets the log level for a specific channel
func (cl *ChanneledLogger) SetChannelLevel(channel Channel, level slog.Level) error {
	if _, exists := cl.channels[channel]; !exists {
		return fmt.Errorf("channel %s does not exist", channel)
	}

	cl.configMu.Lock()
	cl.config.ChannelLevels[channel] = level
	cl.configMu.Unlock()

	newLogger, err := cl.createChannelLogger(channel)
	if err != nil {
		cl.System().Error("Failed to recreate logger for channel on level change", "channel", channel, "error", err)
		return fmt.Errorf("failed to recreate logger for channel %s: %w", channel, err)
	}
	cl.channels[channel] = newLogger

	cl.System().Info("Channel log level updated dynamically",
		slog.String("channel", string(channel)),
		slog.String("level", level.String()),
	)
	return nil
}

// GetChannelLevels returns the current log levels for all channels.
func (cl *ChanneledLogger) GetChannelLevels() map[string]string {
	cl.configMu.RLock()
	defer cl.configMu.RUnlock()

	levels := make(map[string]string)
	for channel := range cl.channels {
		if level, ok := cl.config.ChannelLevels[channel]; ok {
			levels[string(channel)] = level.String()
		} else {
			levels[string(channel)] = cl.config.DefaultLevel.String()
		}
	}
	return levels
}

// LogStartupPhase logs application startup phases
func (cl *ChanneledLogger) LogStartupPhase(phase string, duration time.Duration, success bool) {
	logger := cl.Startup().With(
		slog.String("phase", phase),
		slog.Duration("duration", duration),
		slog.Bool("success", success),
	)
	if success {
		logger.Info("Startup phase completed")
	} else {
		logger.Error("Startup phase failed")
	}
}

// Close flushes and shuts down the logger.
func (cl *ChanneledLogger) Close() error {
	cl.System().Info("Channeled logger shutting down")
	return nil
}
