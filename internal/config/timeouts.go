package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout and retry values.
// These values can be customized via environment variables.
type Timeouts struct {
	Command            time.Duration // Upper bound for a single gcloud invocation
	Stage              time.Duration // Upper bound for one provisioning stage, retries included
	RetryMaxAttempts   int           // Retries after the first attempt for transient failures
	RetryInitialDelay  time.Duration // First backoff delay
	RetryMaxDelay      time.Duration // Backoff ceiling
	RetryJitter        float64       // Randomized fraction of each delay
	StatusPollInterval time.Duration // Interval between readiness polls
	CertificateWait    time.Duration // Default wait for managed certificate activation
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - RUNWAY_TIMEOUT_COMMAND (default: 10m)
//   - RUNWAY_TIMEOUT_STAGE (default: 30m)
//   - RUNWAY_RETRY_MAX_ATTEMPTS (default: 5)
//   - RUNWAY_RETRY_INITIAL_DELAY (default: 2s)
//   - RUNWAY_RETRY_MAX_DELAY (default: 30s)
//   - RUNWAY_RETRY_JITTER (default: 0.3)
//   - RUNWAY_STATUS_POLL_INTERVAL (default: 30s)
//   - RUNWAY_TIMEOUT_CERTIFICATE (default: 15m)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Command:            parseDuration("RUNWAY_TIMEOUT_COMMAND", 10*time.Minute),
		Stage:              parseDuration("RUNWAY_TIMEOUT_STAGE", 30*time.Minute),
		RetryMaxAttempts:   parseInt("RUNWAY_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay:  parseDuration("RUNWAY_RETRY_INITIAL_DELAY", 2*time.Second),
		RetryMaxDelay:      parseDuration("RUNWAY_RETRY_MAX_DELAY", 30*time.Second),
		RetryJitter:        parseFloat("RUNWAY_RETRY_JITTER", 0.3),
		StatusPollInterval: parseDuration("RUNWAY_STATUS_POLL_INTERVAL", 30*time.Second),
		CertificateWait:    parseDuration("RUNWAY_TIMEOUT_CERTIFICATE", 15*time.Minute),
	}
}

// GcloudBinary returns the gcloud executable, overridable with RUNWAY_GCLOUD_BIN.
func GcloudBinary() string {
	if bin := os.Getenv("RUNWAY_GCLOUD_BIN"); bin != "" {
		return bin
	}
	return "gcloud"
}

func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}
	return d
}

func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}

func parseFloat(envVar string, defaultVal float64) float64 {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f < 0 || f > 1 {
		return defaultVal
	}
	return f
}
