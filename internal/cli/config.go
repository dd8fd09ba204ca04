package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/zoobzio/luhn"
)

// Config holds the settings for one invocation. Zero Workers or
// QueueCapacity select the pipeline defaults.
type Config struct {
	Mode          luhn.Mode `yaml:"mode"`
	Workers       int       `yaml:"workers"`
	QueueCapacity int       `yaml:"queue_capacity"`
	LogLevel      string    `yaml:"log_level"`
}

// DefaultConfig returns the settings used when neither a file nor flags
// say otherwise.
func DefaultConfig() Config {
	return Config{
		Mode:     luhn.ModeSerial,
		LogLevel: logrus.WarnLevel.String(),
	}
}

// LoadConfig reads a YAML config file over the defaults. Unknown keys are
// rejected.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return DecodeConfig(f)
}

// DecodeConfig decodes YAML from r over the defaults. An empty document
// yields the defaults.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", luhn.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if !luhn.IsValidMode(c.Mode) {
		return luhn.NewConfigError("mode", string(c.Mode))
	}
	if c.Workers < 0 {
		return luhn.NewConfigError("workers", strconv.Itoa(c.Workers))
	}
	if c.QueueCapacity < 0 {
		return luhn.NewConfigError("queue_capacity", strconv.Itoa(c.QueueCapacity))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return luhn.NewConfigError("log_level", c.LogLevel)
	}
	return nil
}

// pipelineOptions translates the config into pipeline options.
func (c Config) pipelineOptions() []luhn.Option {
	var opts []luhn.Option
	if c.Workers > 0 {
		opts = append(opts, luhn.WithWorkers(c.Workers))
	}
	if c.QueueCapacity > 0 {
		opts = append(opts, luhn.WithQueueCapacity(c.QueueCapacity))
	}
	return opts
}
