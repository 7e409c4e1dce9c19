package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// captureLogOutput is a test helper to capture log output
func captureLogOutput(level string, fn func()) string {
	var buf bytes.Buffer

	originalStdout, originalStderr := stdoutLogger, stderrLogger
	originalUsing, originalHandle := usingLogFile, logFileHandle

	SetWriter(&buf)
	SetLevel(level)

	fn()

	stdoutLogger, stderrLogger = originalStdout, originalStderr
	usingLogFile, logFileHandle = originalUsing, originalHandle

	return strings.TrimSpace(buf.String())
}

// TestLogLevels tests that logging functions work at different levels
func TestLogLevels(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func()
		expected string
	}{
		{
			name:     "Info level",
			logFunc:  func() { Info("test info message") },
			expected: "test info message",
		},
		{
			name:     "Warn level",
			logFunc:  func() { Warn("test warn message") },
			expected: "test warn message",
		},
		{
			name:     "Error level",
			logFunc:  func() { Error("test error message") },
			expected: "test error message",
		},
		{
			name:     "Success level",
			logFunc:  func() { Success("test success message") },
			expected: "test success message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureLogOutput("DEBUG", tt.logFunc)
			assert.Contains(t, output, tt.expected)
		})
	}
}

// TestSetLevel tests that log level filtering works correctly
func TestSetLevel(t *testing.T) {
	tests := []struct {
		name         string
		level        string
		logFunc      func()
		shouldOutput bool
	}{
		{
			name:         "Info logged at INFO level",
			level:        "INFO",
			logFunc:      func() { Info("info message") },
			shouldOutput: true,
		},
		{
			name:         "Debug filtered at INFO level",
			level:        "INFO",
			logFunc:      func() { Debug("debug message") },
			shouldOutput: false,
		},
		{
			name:         "Success filtered at ERROR level",
			level:        "ERROR",
			logFunc:      func() { Success("done") },
			shouldOutput: false,
		},
		{
			name:         "Error logged at WARN level",
			level:        "WARN",
			logFunc:      func() { Error("error message") },
			shouldOutput: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureLogOutput(tt.level, tt.logFunc)
			if tt.shouldOutput {
				assert.NotEmpty(t, output)
			} else {
				assert.Empty(t, output)
			}
		})
	}
}

// TestLevelWriter tests that gin-style writes are split into prefixed lines
func TestLevelWriter(t *testing.T) {
	output := captureLogOutput("DEBUG", func() {
		w := NewLevelWriter("warn", "gin")
		n, err := w.Write([]byte("first line\n\nsecond line\n"))
		assert.NoError(t, err)
		assert.Equal(t, len("first line\n\nsecond line\n"), n)
	})

	assert.Contains(t, output, "gin: first line")
	assert.Contains(t, output, "gin: second line")
}

// TestFormatQueryID tests context-aware query ID truncation
func TestFormatQueryID(t *testing.T) {
	long := strings.Repeat("q", shortIDLength+10)

	_ = captureLogOutput("INFO", func() {
		assert.Equal(t, "01-02", FormatQueryID("01-02"))
		assert.Equal(t, strings.Repeat("q", shortIDLength)+"…", FormatQueryID(long))
	})

	_ = captureLogOutput("DEBUG", func() {
		assert.Equal(t, long, FormatQueryID(long))
	})
}

// TestValidateLogLevel tests log level validation
func TestValidateLogLevel(t *testing.T) {
	for level := range ValidLogLevels {
		assert.NoError(t, ValidateLogLevel(level))
	}
	assert.Error(t, ValidateLogLevel("debug"))
	assert.Error(t, ValidateLogLevel("TRACE"))
}

// TestNormalizeLogLevel tests case and whitespace normalization
func TestNormalizeLogLevel(t *testing.T) {
	for _, in := range []string{"debug", " Debug ", "DEBUG"} {
		level, err := NormalizeLogLevel(in)
		assert.NoError(t, err)
		assert.Equal(t, "DEBUG", level)
	}

	_, err := NormalizeLogLevel("verbose")
	assert.Error(t, err)
}
