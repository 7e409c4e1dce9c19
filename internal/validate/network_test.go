package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test cases for ParseBindAddress function
func TestParseBindAddress(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		expectError  bool
		expectedHost string
		expectedPort int
	}{
		{
			name:         "valid IPv4 address",
			input:        "192.168.1.1:8080",
			expectedHost: "192.168.1.1",
			expectedPort: 8080,
		},
		{
			name:         "valid localhost hostname",
			input:        "localhost:5000",
			expectedHost: "localhost",
			expectedPort: 5000,
		},
		{
			name:         "valid any address",
			input:        "0.0.0.0:9000",
			expectedHost: "0.0.0.0",
			expectedPort: 9000,
		},
		{
			name:         "valid IPv6 loopback",
			input:        "[::1]:5000",
			expectedHost: "::1",
			expectedPort: 5000,
		},
		{
			name:         "port zero lets the OS choose",
			input:        "127.0.0.1:0",
			expectedHost: "127.0.0.1",
			expectedPort: 0,
		},
		{name: "empty address", input: "", expectError: true},
		{name: "missing port", input: "192.168.1.1", expectError: true},
		{name: "invalid port - too high", input: "192.168.1.1:99999", expectError: true},
		{name: "invalid port - negative", input: "192.168.1.1:-1", expectError: true},
		{name: "invalid port - not a number", input: "192.168.1.1:abc", expectError: true},
		{name: "empty host", input: ":5000", expectError: true},
		{name: "host with underscore", input: "bad_host:5000", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseBindAddress(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedHost, result.Host)
			assert.Equal(t, tt.expectedPort, result.Port)
		})
	}
}

// TestNetworkAddressString tests host:port rendering including IPv6 brackets
func TestNetworkAddressString(t *testing.T) {
	assert.Equal(t, "localhost:5000", NetworkAddress{Host: "localhost", Port: 5000}.String())
	assert.Equal(t, "[::1]:5000", NetworkAddress{Host: "::1", Port: 5000}.String())
}

// TestValidateHost tests bare host validation for the --host flag
func TestValidateHost(t *testing.T) {
	for _, host := range []string{"localhost", "0.0.0.0", "127.0.0.1", "::1", "rater.example.com"} {
		assert.NoError(t, ValidateHost(host), host)
	}
	for _, host := range []string{"", "bad host", "bad_host", "http://x"} {
		assert.Error(t, ValidateHost(host), host)
	}
}

// TestValidateServerURL tests producer server URL validation
func TestValidateServerURL(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{name: "http localhost", input: "http://localhost:5000"},
		{name: "https with path", input: "https://rater.example.com/prefq"},
		{name: "empty", input: "", expectError: true},
		{name: "no scheme", input: "localhost:5000", expectError: true},
		{name: "ftp scheme", input: "ftp://example.com", expectError: true},
		{name: "not a url", input: "not a url", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateServerURL(tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestValidatePortRange tests the 1-65535 port rule
func TestValidatePortRange(t *testing.T) {
	assert.NoError(t, ValidatePortRange(1))
	assert.NoError(t, ValidatePortRange(5000))
	assert.NoError(t, ValidatePortRange(65535))
	assert.Error(t, ValidatePortRange(0))
	assert.Error(t, ValidatePortRange(65536))
	assert.Error(t, ValidatePortRange(-1))
}

// TestValidateRequiredString tests required string validation messages
func TestValidateRequiredString(t *testing.T) {
	assert.NoError(t, ValidateRequiredString("videos", "video directory"))
	err := ValidateRequiredString("", "video directory")
	require.Error(t, err)
	assert.Equal(t, "video directory cannot be empty", err.Error())
}

// TestValidatePositiveTimeout tests timeout validation
func TestValidatePositiveTimeout(t *testing.T) {
	assert.NoError(t, ValidatePositiveTimeout(time.Second, "timeout"))
	assert.Error(t, ValidatePositiveTimeout(0, "timeout"))
	assert.Error(t, ValidatePositiveTimeout(-time.Second, "timeout"))
}

// TestValidateServerCredentials tests the all-or-none credential rule
func TestValidateServerCredentials(t *testing.T) {
	tests := []struct {
		name        string
		pub, priv   string
		pw          string
		expectError bool
	}{
		{name: "none", expectError: false},
		{name: "all", pub: "k.pub", priv: "k", pw: "secret", expectError: false},
		{name: "missing password", pub: "k.pub", priv: "k", expectError: true},
		{name: "only password", pw: "secret", expectError: true},
		{name: "missing private key", pub: "k.pub", pw: "secret", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateServerCredentials(tt.pub, tt.priv, tt.pw)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestValidateProducerCredentials tests that the producer rejects any subset
func TestValidateProducerCredentials(t *testing.T) {
	assert.NoError(t, ValidateProducerCredentials("", "", ""))
	assert.NoError(t, ValidateProducerCredentials("k.pub", "k", "secret"))
	assert.Error(t, ValidateProducerCredentials("/k/id_rsa.pub", "", "secret"))
	assert.Error(t, ValidateProducerCredentials("k.pub", "k", ""))
	assert.Error(t, ValidateProducerCredentials("", "k", "secret"))
	assert.Error(t, ValidateProducerCredentials("k.pub", "", ""))
	assert.Error(t, ValidateProducerCredentials("", "", "secret"))
	assert.Error(t, ValidateProducerCredentials("", "k", ""))
}
