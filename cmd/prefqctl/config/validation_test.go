package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// withDefaults resets the global flag state for one test.
func withDefaults(t *testing.T) {
	t.Helper()
	savedGlobal, savedProducer := Global, Producer
	t.Cleanup(func() { Global, Producer = savedGlobal, savedProducer })

	Global.ServerURL = DefaultServerURL
	Global.LogLevel = "ERROR"
	Global.Timeout = 10 * time.Second
	Global.Output = "table"

	Producer.SSHPub, Producer.SSHPriv, Producer.Password = "", "", ""
	Producer.Pairs = []string{"01.mp4:02.mp4"}
	Producer.PollInterval = 5 * time.Second
	Producer.MaxPollInterval = 30 * time.Second
	Producer.MaxWait = 0
	Producer.Parallel = 2
}

func TestDefaultServerURL(t *testing.T) {
	assert.Equal(t, "http://localhost:5000", DefaultServerURL)
}

func TestValidateGlobalFlags(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func()
		wantErr bool
	}{
		{name: "defaults", mutate: func() {}},
		{name: "https", mutate: func() { Global.ServerURL = "https://rater.example.com" }},
		{name: "no_scheme", mutate: func() { Global.ServerURL = "localhost:5000" }, wantErr: true},
		{name: "ftp", mutate: func() { Global.ServerURL = "ftp://host" }, wantErr: true},
		{name: "json_output", mutate: func() { Global.Output = "json" }},
		{name: "yaml_output", mutate: func() { Global.Output = "yaml" }, wantErr: true},
		{name: "lowercase_level", mutate: func() { Global.LogLevel = "debug" }},
		{name: "bad_level", mutate: func() { Global.LogLevel = "TRACE" }, wantErr: true},
		{name: "zero_timeout", mutate: func() { Global.Timeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withDefaults(t)
			tt.mutate()

			err := ValidateGlobalFlags(nil, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func()
		wantErr bool
	}{
		{name: "defaults", mutate: func() {}},
		{name: "no_pairs", mutate: func() { Producer.Pairs = nil }, wantErr: true},
		{name: "zero_parallel", mutate: func() { Producer.Parallel = 0 }, wantErr: true},
		{name: "pub_and_pw", mutate: func() { Producer.SSHPub, Producer.Password = "k.pub", "pw" }, wantErr: true},
		{name: "pub_and_priv", mutate: func() { Producer.SSHPub, Producer.SSHPriv = "k.pub", "k" }, wantErr: true},
		{name: "all_three", mutate: func() {
			Producer.SSHPub, Producer.SSHPriv, Producer.Password = "k.pub", "k", "pw"
		}},
		{name: "pw_only", mutate: func() { Producer.Password = "pw" }, wantErr: true},
		{name: "priv_only", mutate: func() { Producer.SSHPriv = "k" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withDefaults(t)
			tt.mutate()

			err := ValidateSubmission()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidatePolling(t *testing.T) {
	withDefaults(t)
	assert.NoError(t, ValidatePolling())

	Producer.MaxPollInterval = time.Second
	assert.Error(t, ValidatePolling(), "cap below the initial interval")

	Producer.MaxPollInterval = 30 * time.Second
	Producer.MaxWait = -time.Second
	assert.Error(t, ValidatePolling())

	Producer.MaxWait = 0
	Producer.PollInterval = 0
	assert.Error(t, ValidatePolling())
}
