package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and an optional configuration file
// to produce a Config. Precedence: defaults < config file < flags.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Method:      "GET",
		Headers:     map[string]string{},
		Requests:    100,
		Concurrency: 10,
		Timeout:     30 * time.Second,
		ConfigFile:  configPath,
	}

	if err := applyConfigSettings(cfg, cfgViper.AllSettings()); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	cfg.TargetURL = strings.TrimSpace(cfg.TargetURL)
	cfg.BodyFile = strings.TrimSpace(cfg.BodyFile)
	cfg.DataFile = strings.TrimSpace(cfg.DataFile)
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}

	return cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "url", "target"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("url: %w", err)
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "method"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("method: %w", err)
		}
		if val != "" {
			cfg.Method = val
		}
	}

	if raw, ok := lookupSetting(settings, "headers"); ok {
		hdrs, err := asStringMap(raw)
		if err != nil {
			return fmt.Errorf("headers: %w", err)
		}
		for key, value := range hdrs {
			cfg.Headers[key] = value
		}
	}

	if raw, ok := lookupSetting(settings, "body"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("body: %w", err)
		}
		cfg.Body = val
	}

	if raw, ok := lookupSetting(settings, "body_file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("body_file: %w", err)
		}
		cfg.BodyFile = val
	}

	if raw, ok := lookupSetting(settings, "data_file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("data_file: %w", err)
		}
		cfg.DataFile = val
	}

	if raw, ok := lookupSetting(settings, "requests"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("requests: %w", err)
		}
		cfg.Requests = val
	}

	if raw, ok := lookupSetting(settings, "concurrency"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("concurrency: %w", err)
		}
		cfg.Concurrency = val
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		val, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = val
	}

	if raw, ok := lookupSetting(settings, "json_output"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("json_output: %w", err)
		}
		cfg.JSONOutput = val
	}

	if raw, ok := lookupSetting(settings, "html_output"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("html_output: %w", err)
		}
		cfg.HTMLOutput = val
	}

	if raw, ok := lookupSetting(settings, "log_errors"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("log_errors: %w", err)
		}
		cfg.LogErrors = val
	}

	if raw, ok := lookupSetting(settings, "thresholds"); ok {
		vals, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("thresholds: %w", err)
		}
		cfg.Thresholds = vals
	}

	if raw, ok := lookupSetting(settings, "extractors"); ok {
		extractors, err := parseExtractorSettings(raw)
		if err != nil {
			return fmt.Errorf("extractors: %w", err)
		}
		cfg.Extractors = extractors
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		if err := parseTracingSettings(&cfg.Tracing, raw); err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
	}

	return nil
}

func parseExtractorSettings(raw interface{}) ([]ExtractorConfig, error) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", raw)
	}

	extractors := make([]ExtractorConfig, 0, len(items))
	for i, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("entry %d: expected a mapping, got %T", i, item)
		}

		var ex ExtractorConfig
		if raw, ok := lookupSetting(entry, "name"); ok {
			val, err := asString(raw)
			if err != nil {
				return nil, fmt.Errorf("entry %d name: %w", i, err)
			}
			ex.Name = val
		}
		if raw, ok := lookupSetting(entry, "json_path"); ok {
			val, err := asString(raw)
			if err != nil {
				return nil, fmt.Errorf("entry %d json_path: %w", i, err)
			}
			ex.JSONPath = val
		}
		if raw, ok := lookupSetting(entry, "regex"); ok {
			val, err := asString(raw)
			if err != nil {
				return nil, fmt.Errorf("entry %d regex: %w", i, err)
			}
			ex.Regex = val
		}
		if raw, ok := lookupSetting(entry, "on_error"); ok {
			val, err := asBool(raw)
			if err != nil {
				return nil, fmt.Errorf("entry %d on_error: %w", i, err)
			}
			ex.OnError = val
		}
		extractors = append(extractors, ex)
	}
	return extractors, nil
}

func parseTracingSettings(tc *TracingConfig, raw interface{}) error {
	entry, ok := raw.(map[string]interface{})
	if !ok {
		return fmt.Errorf("expected a mapping, got %T", raw)
	}

	if raw, ok := lookupSetting(entry, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("endpoint: %w", err)
		}
		tc.Endpoint = val
	}
	if raw, ok := lookupSetting(entry, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("protocol: %w", err)
		}
		tc.Protocol = val
	}
	if raw, ok := lookupSetting(entry, "service_name"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("service_name: %w", err)
		}
		tc.ServiceName = val
	}
	if raw, ok := lookupSetting(entry, "sample_rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("sample_rate: %w", err)
		}
		tc.SampleRate = val
	}
	if raw, ok := lookupSetting(entry, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("insecure: %w", err)
		}
		tc.Insecure = val
	}
	if raw, ok := lookupSetting(entry, "propagate"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("propagate: %w", err)
		}
		tc.Propagate = val
	}
	return nil
}

// applyFlagOverrides layers explicitly-set CLI flags over the config.
func applyFlagOverrides(cfg *Config, flags *pflag.FlagSet) error {
	var err error

	if flags.Changed("url") {
		cfg.TargetURL, err = flags.GetString("url")
		if err != nil {
			return err
		}
	}
	if flags.Changed("method") {
		cfg.Method, err = flags.GetString("method")
		if err != nil {
			return err
		}
	}
	if flags.Changed("header") {
		headers, err := flags.GetStringSlice("header")
		if err != nil {
			return err
		}
		for _, header := range headers {
			key, value, err := splitHeader(header)
			if err != nil {
				return err
			}
			cfg.Headers[key] = value
		}
	}
	if flags.Changed("body") {
		cfg.Body, err = flags.GetString("body")
		if err != nil {
			return err
		}
	}
	if flags.Changed("body-file") {
		cfg.BodyFile, err = flags.GetString("body-file")
		if err != nil {
			return err
		}
	}
	if flags.Changed("data-file") {
		cfg.DataFile, err = flags.GetString("data-file")
		if err != nil {
			return err
		}
	}
	if flags.Changed("requests") {
		cfg.Requests, err = flags.GetInt("requests")
		if err != nil {
			return err
		}
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, err = flags.GetInt("concurrency")
		if err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		cfg.Timeout, err = flags.GetDuration("timeout")
		if err != nil {
			return err
		}
	}
	if flags.Changed("json-output") {
		cfg.JSONOutput, err = flags.GetBool("json-output")
		if err != nil {
			return err
		}
	}
	if flags.Changed("html-output") {
		cfg.HTMLOutput, err = flags.GetString("html-output")
		if err != nil {
			return err
		}
	}
	if flags.Changed("log-errors") {
		cfg.LogErrors, err = flags.GetBool("log-errors")
		if err != nil {
			return err
		}
	}
	if flags.Changed("threshold") {
		cfg.Thresholds, err = flags.GetStringSlice("threshold")
		if err != nil {
			return err
		}
	}

	return nil
}

// splitHeader parses a key=value or key:value header flag.
func splitHeader(raw string) (string, string, error) {
	for _, sep := range []string{"=", ":"} {
		if idx := strings.Index(raw, sep); idx > 0 {
			key := strings.TrimSpace(raw[:idx])
			value := strings.TrimSpace(raw[idx+len(sep):])
			if key == "" {
				break
			}
			return key, value, nil
		}
	}
	return "", "", fmt.Errorf("invalid header %q: expected key=value", raw)
}
