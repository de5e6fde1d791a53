package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"gopkg.in/yaml.v3"
)

// DefaultFormEndpoint serves the reference data on GET and accepts sign-ups on POST.
const DefaultFormEndpoint = "https://frontend-take-home.fetchrewards.com/form"

type ServerConfig struct {
	Address         string        `json:"address" yaml:"address"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"` // trace|debug|info|warn|error
}

type SecurityConfig struct {
	MaxBodySize    int64    `json:"maxBodySize" yaml:"maxBodySize"` // bytes
	AllowedMethods []string `json:"allowedMethods" yaml:"allowedMethods"`
}

type TimeoutConfig struct {
	RequestTimeout int `json:"requestTimeout" yaml:"requestTimeout"` // seconds
}

type CORSConfig struct {
	AllowOrigins     []string      `json:"allowOrigins" yaml:"allowOrigins"`
	AllowMethods     []string      `json:"allowMethods" yaml:"allowMethods"`
	AllowHeaders     []string      `json:"allowHeaders" yaml:"allowHeaders"`
	ExposeHeaders    []string      `json:"exposeHeaders" yaml:"exposeHeaders"`
	AllowCredentials bool          `json:"allowCredentials" yaml:"allowCredentials"`
	MaxAge           time.Duration `json:"maxAge" yaml:"maxAge"`
	TrustedDomains   []string      `json:"trustedDomains" yaml:"trustedDomains"`
}

type MiddlewareConfig struct {
	Security SecurityConfig `json:"security" yaml:"security"`
	Timeout  TimeoutConfig  `json:"timeout" yaml:"timeout"`
	CORS     CORSConfig     `json:"cors" yaml:"cors"`
}

// ReferenceConfig controls where occupations and states come from.
type ReferenceConfig struct {
	URL            string        `json:"url" yaml:"url"`
	Timeout        time.Duration `json:"timeout" yaml:"timeout"`
	FetchOnRequest bool          `json:"fetchOnRequest" yaml:"fetchOnRequest"`
}

// SubmissionConfig controls the outbound sign-up POST.
type SubmissionConfig struct {
	URL     string        `json:"url" yaml:"url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
	// RequireValid stops invalid forms from being forwarded. Off by default:
	// the form has always posted regardless of the validation outcome.
	RequireValid bool `json:"requireValid" yaml:"requireValid"`
}

type NotificationConfig struct {
	SuccessAutoClose time.Duration `json:"successAutoClose" yaml:"successAutoClose"`
	ErrorAutoClose   time.Duration `json:"errorAutoClose" yaml:"errorAutoClose"`
}

type Config struct {
	Server        ServerConfig       `json:"server" yaml:"server"`
	Log           LogConfig          `json:"log" yaml:"log"`
	Middleware    MiddlewareConfig   `json:"middleware" yaml:"middleware"`
	Reference     ReferenceConfig    `json:"reference" yaml:"reference"`
	Submission    SubmissionConfig   `json:"submission" yaml:"submission"`
	Notifications NotificationConfig `json:"notifications" yaml:"notifications"`
	Env           string             `json:"env" yaml:"env"`
}

var defaultConfig = Config{
	Server: ServerConfig{
		Address:         ":8080",
		ShutdownTimeout: 10 * time.Second,
	},
	Log: LogConfig{
		Level: "info",
	},
	Middleware: MiddlewareConfig{
		Security: SecurityConfig{
			MaxBodySize:    1 << 20, // 1MB
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		},
		Timeout: TimeoutConfig{
			RequestTimeout: 15,
		},
		CORS: CORSConfig{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "X-Requested-With"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		},
	},
	Reference: ReferenceConfig{
		URL:     DefaultFormEndpoint,
		Timeout: 10 * time.Second,
	},
	Submission: SubmissionConfig{
		URL:     DefaultFormEndpoint,
		Timeout: 15 * time.Second,
	},
	Notifications: NotificationConfig{
		SuccessAutoClose: 2 * time.Second,
		ErrorAutoClose:   20 * time.Second,
	},
	Env: "development",
}

// Default returns a copy of the built-in configuration.
func Default() *Config {
	cfg := defaultConfig
	cfg.Middleware.Security.AllowedMethods = append([]string(nil), defaultConfig.Middleware.Security.AllowedMethods...)
	cfg.Middleware.CORS.AllowOrigins = append([]string(nil), defaultConfig.Middleware.CORS.AllowOrigins...)
	cfg.Middleware.CORS.AllowMethods = append([]string(nil), defaultConfig.Middleware.CORS.AllowMethods...)
	cfg.Middleware.CORS.AllowHeaders = append([]string(nil), defaultConfig.Middleware.CORS.AllowHeaders...)
	cfg.Middleware.CORS.ExposeHeaders = append([]string(nil), defaultConfig.Middleware.CORS.ExposeHeaders...)
	return &cfg
}

// IsProd reports whether the service runs in production.
func (c *Config) IsProd() bool {
	return c.Env == "production"
}

// Load builds the configuration. Precedence: environment > config file > defaults.
// An explicit path wins over APP_CONFIG and the search paths.
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		path = getConfigPath()
	}
	if path != "" {
		if err := loadFromFile(config, path); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	loadFromEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Address) == "" {
		return fmt.Errorf("config: server address is required")
	}
	if strings.TrimSpace(c.Reference.URL) == "" {
		return fmt.Errorf("config: reference url is required")
	}
	if strings.TrimSpace(c.Submission.URL) == "" {
		return fmt.Errorf("config: submission url is required")
	}
	if c.Notifications.SuccessAutoClose < 0 || c.Notifications.ErrorAutoClose < 0 {
		return fmt.Errorf("config: notification auto-close must not be negative")
	}
	return nil
}

// HlogLevel maps the configured log level onto hlog.
func (c *Config) HlogLevel() hlog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "trace":
		return hlog.LevelTrace
	case "debug":
		return hlog.LevelDebug
	case "warn":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	default:
		return hlog.LevelInfo
	}
}

// getConfigPath locates a config file when none was given explicitly.
func getConfigPath() string {
	if path := os.Getenv("APP_CONFIG"); path != "" {
		return path
	}

	searchPaths := []string{
		"./config.yaml",
		"./config.json",
		"../config.yaml",
		"../config.json",
		"/etc/signup-portal/config.yaml",
		"/etc/signup-portal/config.json",
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadFromFile decodes YAML or JSON depending on the file extension.
// Durations may be written as "10s" in both formats; JSON also accepts
// plain nanosecond integers.
func loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	default:
		return unmarshalJSON(data, config)
	}
}

var durationType = reflect.TypeOf(time.Duration(0))

func unmarshalJSON(data []byte, config *Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	normalized, err := normalizeDurations(raw, reflect.TypeOf(*config), "")
	if err != nil {
		return err
	}
	data, err = json.Marshal(normalized)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, config)
}

// normalizeDurations rewrites duration strings found at time.Duration fields
// of t into nanosecond integers so encoding/json can decode them.
func normalizeDurations(raw any, t reflect.Type, key string) (any, error) {
	if t == durationType {
		if s, ok := raw.(string); ok {
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			return int64(d), nil
		}
		return raw, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok || t.Kind() != reflect.Struct {
		return raw, nil
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		for k, v := range obj {
			if !strings.EqualFold(k, name) {
				continue
			}
			out, err := normalizeDurations(v, field.Type, joinKey(key, k))
			if err != nil {
				return nil, err
			}
			obj[k] = out
		}
	}
	return obj, nil
}

func joinKey(parent, k string) string {
	if parent == "" {
		return k
	}
	return parent + "." + k
}

func loadFromEnv(config *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		config.Server.Address = v
	}

	if v := os.Getenv("APP_ENV"); v != "" {
		config.Env = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Log.Level = strings.ToLower(v)
	}

	if v := os.Getenv("MAX_BODY_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Middleware.Security.MaxBodySize = size
		}
	}

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			config.Middleware.Timeout.RequestTimeout = timeout
		}
	}

	if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
		config.Middleware.CORS.AllowOrigins = splitEnvList(v)
	}

	if v := os.Getenv("REFERENCE_URL"); v != "" {
		config.Reference.URL = v
	}

	if v := os.Getenv("REFERENCE_FETCH_ON_REQUEST"); v != "" {
		config.Reference.FetchOnRequest = parseBool(v)
	}

	if v := os.Getenv("SUBMISSION_URL"); v != "" {
		config.Submission.URL = v
	}

	if v := os.Getenv("SUBMISSION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Submission.Timeout = d
		} else {
			hlog.Warnf("Invalid SUBMISSION_TIMEOUT format: %v", err)
		}
	}

	if v := os.Getenv("SUBMISSION_REQUIRE_VALID"); v != "" {
		config.Submission.RequireValid = parseBool(v)
	}
}

// splitEnvList splits a comma separated value, dropping blanks.
func splitEnvList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseBool(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value == "true" || value == "1" || value == "yes"
}
