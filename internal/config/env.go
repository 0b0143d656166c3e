package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables read by ApplyEnv.
const (
	EnvURL              = "MODELVIEW_URL"
	EnvStatusAddr       = "MODELVIEW_STATUS_ADDR"
	EnvLogLevel         = "MODELVIEW_LOG_LEVEL"
	EnvLogFormat        = "MODELVIEW_LOG_FORMAT"
	EnvRequestTimeoutMS = "MODELVIEW_REQUEST_TIMEOUT_MS"
)

// ApplyEnv overrides fields from the environment. Unparseable numbers are ignored.
func (c *Config) ApplyEnv() {
	c.URL = envStr(EnvURL, c.URL)
	c.StatusAddr = envStr(EnvStatusAddr, c.StatusAddr)
	c.LogLevel = envStr(EnvLogLevel, c.LogLevel)
	c.LogFormat = envStr(EnvLogFormat, c.LogFormat)
	c.RequestTimeoutMS = envInt(EnvRequestTimeoutMS, c.RequestTimeoutMS)
}

func envStr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func envInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}
