// Copyright 2021 The apiclient Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads client settings from API_* environment
// variables, an optional .env file and an optional configuration file.
//
// Precedence, highest first: the process environment, the .env file,
// the configuration file, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/gogama/apiclient"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load. The key
// "retry.total", for example, is read from API_RETRY_TOTAL.
const EnvPrefix = "API"

// DefaultBaseURL is the base URL used when API_BASE_URL is not set.
const DefaultBaseURL = "https://open.bigmodel.cn"

const (
	keyBaseURL           = "base_url"
	keyAPIKey            = "api_key"
	keyTimeout           = "timeout"
	keyRetryTotal        = "retry.total"
	keyRetryBackoff      = "retry.backoff_factor"
	keyRetryBackoffMax   = "retry.backoff_max"
	keyRetryStatusCodes  = "retry.status_codes"
	keyRetryAfter        = "retry.respect_retry_after"
	keyLogLevel          = "log_level"
	keyMetricsAddr       = "metrics_addr"
	keyConfigFile        = "config_file"
	keyHeaders           = "headers"
	defaultEnvFile       = ".env"
	defaultTimeoutString = "30s"
)

// envNames holds the variables that do not follow the prefix rule.
var envNames = map[string]string{
	keyAPIKey: "API_KEY",
}

var keys = []string{
	keyBaseURL, keyAPIKey, keyTimeout,
	keyRetryTotal, keyRetryBackoff, keyRetryBackoffMax, keyRetryStatusCodes, keyRetryAfter,
	keyLogLevel, keyMetricsAddr, keyConfigFile,
}

// Settings is the resolved configuration of the command line client.
type Settings struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	Retry       apiclient.RetryConfig
	Headers     map[string]string
	LogLevel    log.Level
	MetricsAddr string
}

// ClientConfig converts s into an apiclient.Config. The logger and
// handlers are left for the caller to fill in.
func (s *Settings) ClientConfig() apiclient.Config {
	rc := s.Retry
	return apiclient.Config{
		BaseURL: s.BaseURL,
		APIKey:  s.APIKey,
		Headers: s.Headers,
		Retry:   &rc,
		Timeout: s.Timeout,
	}
}

type options struct {
	envFile    string
	configFile string
}

// An Option changes how Load finds its inputs.
type Option func(*options)

// WithEnvFile reads dotenv variables from path instead of ".env". A
// missing file is not an error.
func WithEnvFile(path string) Option {
	return func(o *options) {
		o.envFile = path
	}
}

// WithConfigFile reads path as the configuration file, overriding
// API_CONFIG_FILE. Its format follows the file extension.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}

// Load resolves the settings.
func Load(opts ...Option) (*Settings, error) {
	o := options{envFile: defaultEnvFile}
	for _, opt := range opts {
		opt(&o)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, name := range envNames {
		_ = v.BindEnv(k, name)
	}
	setDefaults(v)

	if err := applyEnvFile(v, o.envFile); err != nil {
		return nil, err
	}

	file := o.configFile
	if file == "" {
		file = v.GetString(keyConfigFile)
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	}

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	d := apiclient.DefaultRetryConfig()
	v.SetDefault(keyBaseURL, DefaultBaseURL)
	v.SetDefault(keyAPIKey, "")
	v.SetDefault(keyTimeout, defaultTimeoutString)
	v.SetDefault(keyRetryTotal, d.Total)
	v.SetDefault(keyRetryBackoff, d.BackoffFactor.String())
	v.SetDefault(keyRetryBackoffMax, d.BackoffMax.String())
	v.SetDefault(keyRetryStatusCodes, joinInts(d.StatusCodes))
	v.SetDefault(keyRetryAfter, d.RespectRetryAfter)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyMetricsAddr, "")
	v.SetDefault(keyConfigFile, "")
}

// applyEnvFile copies the API_* variables of a dotenv file into v,
// skipping those already present in the process environment. The
// process environment itself is left untouched.
func applyEnvFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	m, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	for _, k := range keys {
		val, ok := m[EnvName(k)]
		if !ok || os.Getenv(EnvName(k)) != "" {
			continue
		}
		v.Set(k, val)
	}
	return nil
}

// EnvName returns the environment variable that holds key.
func EnvName(key string) string {
	if name, ok := envNames[key]; ok {
		return name
	}
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func decode(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		BaseURL:     v.GetString(keyBaseURL),
		APIKey:      v.GetString(keyAPIKey),
		MetricsAddr: v.GetString(keyMetricsAddr),
		Retry: apiclient.RetryConfig{
			RespectRetryAfter: v.GetBool(keyRetryAfter),
		},
	}

	var err error
	if s.Timeout, err = seconds(v, keyTimeout); err != nil {
		return nil, err
	}
	if s.Retry.Total, err = strconv.Atoi(strings.TrimSpace(v.GetString(keyRetryTotal))); err != nil {
		return nil, fmt.Errorf("config: %s: %w", EnvName(keyRetryTotal), err)
	}
	if s.Retry.BackoffFactor, err = nonNegative(v, keyRetryBackoff); err != nil {
		return nil, err
	}
	if s.Retry.BackoffMax, err = nonNegative(v, keyRetryBackoffMax); err != nil {
		return nil, err
	}
	if s.Retry.StatusCodes, err = statusCodes(v.Get(keyRetryStatusCodes)); err != nil {
		return nil, fmt.Errorf("config: %s: %w", EnvName(keyRetryStatusCodes), err)
	}
	if s.LogLevel, err = log.ParseLevel(v.GetString(keyLogLevel)); err != nil {
		return nil, fmt.Errorf("config: %s: %w", EnvName(keyLogLevel), err)
	}
	if h := v.GetStringMapString(keyHeaders); len(h) > 0 {
		s.Headers = h
	}
	return s, nil
}

// seconds reads a duration given either as a Go duration string
// ("1500ms") or as a plain number of seconds ("1.5").
func seconds(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		ns := f * float64(time.Second)
		if math.IsNaN(ns) || ns >= math.MaxInt64 || ns <= math.MinInt64 {
			return 0, fmt.Errorf("config: %s: duration %q out of range", EnvName(key), raw)
		}
		return time.Duration(ns), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: invalid duration %q", EnvName(key), raw)
	}
	return d, nil
}

func nonNegative(v *viper.Viper, key string) (time.Duration, error) {
	d, err := seconds(v, key)
	if err == nil && d < 0 {
		err = fmt.Errorf("config: %s: negative duration %s", EnvName(key), d)
	}
	return d, err
}

// statusCodes accepts a comma separated string, as found in the
// environment, or a list, as found in a configuration file. An empty
// string disables status retries.
func statusCodes(raw interface{}) ([]int, error) {
	var items []string
	switch x := raw.(type) {
	case string:
		for _, s := range strings.Split(x, ",") {
			if s = strings.TrimSpace(s); s != "" {
				items = append(items, s)
			}
		}
	case []interface{}:
		for _, s := range x {
			items = append(items, strings.TrimSpace(fmt.Sprint(s)))
		}
	case []int:
		return append([]int{}, x...), nil
	default:
		return nil, fmt.Errorf("unsupported value %v", raw)
	}

	codes := make([]int, 0, len(items))
	for _, s := range items {
		c, err := strconv.Atoi(s)
		if err != nil || c < 100 || c > 599 {
			return nil, fmt.Errorf("invalid status code %q", s)
		}
		codes = append(codes, c)
	}
	return codes, nil
}

func joinInts(xs []int) string {
	ss := make([]string, len(xs))
	for i, x := range xs {
		ss[i] = strconv.Itoa(x)
	}
	return strings.Join(ss, ",")
}
