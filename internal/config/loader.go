package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

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

// Load parses command-line arguments and configuration files to produce a Config.
// With no arguments it returns Default.
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
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}

	configPath := flagSet.Lookup("config").Value.String()
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	settings := cfgViper.AllSettings()

	cfg := Default()
	cfg.ConfigFile = configPath

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	normalize(cfg)
	return cfg, nil
}

func normalize(cfg *Config) {
	cfg.Workload = strings.ToLower(strings.TrimSpace(cfg.Workload))
	if cfg.Workload == "" {
		cfg.Workload = DefaultWorkload
	}
	keys := make([]string, 0, len(cfg.Strategies))
	for _, key := range cfg.Strategies {
		key = strings.ToLower(strings.TrimSpace(key))
		if key != "" {
			keys = append(keys, key)
		}
	}
	cfg.Strategies = keys
	cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(cfg.Tracing.Protocol))
}

// applyConfigSettings applies settings from a config file to the Config struct.
// Every malformed setting is reported, not just the first.
func applyConfigSettings(cfg *Config, raw map[string]interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	s, err := newFileSettings("", raw)
	if err != nil {
		return err
	}

	errs := []error{
		s.count(&cfg.Tasks, 1, "tasks"),
		s.duration(&cfg.Work, "work"),
		s.text(&cfg.Workload, "workload"),
		s.list(&cfg.Strategies, "strategies", "strategy"),
		s.duration(&cfg.Deadline, "deadline"),
		s.count(&cfg.Procs, 0, "procs"),
		s.toggle(&cfg.JSONOutput, "json_output", "jsonoutput", "json-output"),
		s.toggle(&cfg.YAMLOutput, "yaml_output", "yamloutput", "yaml-output"),
		s.toggle(&cfg.Compare, "compare"),
		s.toggle(&cfg.Progress, "progress"),
		s.toggle(&cfg.Dashboard, "dashboard"),
		s.toggle(&cfg.LogErrors, "log_errors", "logerrors", "log-errors"),
		s.toggle(&cfg.Verbose, "verbose"),
		s.toggle(&cfg.NoPause, "no_pause", "nopause", "no-pause"),
		s.toggle(&cfg.Gops, "gops"),
		s.list(&cfg.Thresholds, "thresholds", "threshold"),
		s.text(&cfg.StatsdAddr, "statsd_addr", "statsdaddr", "statsd-addr"),
		s.text(&cfg.LockFile, "lock_file", "lockfile", "lock-file"),
		applyTracingSettings(&cfg.Tracing, s),
	}
	return errors.Join(errs...)
}

func applyTracingSettings(t *TracingConfig, s fileSettings) error {
	tracing, ok, err := s.section("tracing")
	if err != nil || !ok {
		return err
	}
	return errors.Join(
		tracing.text(&t.Endpoint, "endpoint"),
		tracing.text(&t.Protocol, "protocol"),
		tracing.toggle(&t.Insecure, "insecure"),
		tracing.fraction(&t.SampleRate, "sample_rate", "samplerate", "sample-rate"),
		tracing.text(&t.ServiceName, "service_name", "servicename", "service-name"),
	)
}
