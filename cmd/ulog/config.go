package main

import (
	"os"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"

	"go.nesv.ca/ulog"
)

// Config configures the demo command.
type Config struct {
	Path       string
	RotateSize uint64
	FlushEvery int
	Checksums  bool
	LogLevel   zapcore.Level
	InfoKey    string
	InfoValue  string
	Producers  int
	Records    int
}

const (
	defaultProducers = 4
	defaultRecords   = 1000
)

// Parse reads a YAML configuration. Missing settings keep their defaults.
//
//	path: /tmp/demo.ulg
//	rotate_size: 64K     # "off" disables rotation
//	flush_every: 100
//	checksums: true
//	log_level: debug
//	info:
//	  key: sys_name
//	  value: demo
//	producers: 4
//	records: 1000
func (c *Config) Parse(data []byte) error {
	var aux struct {
		Path       string `yaml:"path"`
		RotateSize string `yaml:"rotate_size"`
		FlushEvery int    `yaml:"flush_every"`
		Checksums  bool   `yaml:"checksums"`
		LogLevel   string `yaml:"log_level"`
		Info       struct {
			Key   string `yaml:"key"`
			Value string `yaml:"value"`
		} `yaml:"info"`
		Producers int `yaml:"producers"`
		Records   int `yaml:"records"`
	}
	if err := yaml.Unmarshal(data, &aux); err != nil {
		return errors.Wrap(err, "unmarshal config")
	}

	if aux.Path == "" {
		return errors.New("no path")
	}
	if !strings.HasSuffix(aux.Path, ulog.Ext) {
		return errors.Wrapf(ulog.ErrInvalidFilename, "path %s", aux.Path)
	}
	c.Path = aux.Path

	switch aux.RotateSize {
	case "":
		c.RotateSize = ulog.DefaultRotateSize
	case "off":
		c.RotateSize = 0
	default:
		n, err := bytefmt.ToBytes(aux.RotateSize)
		if err != nil {
			return errors.Wrap(err, "rotate_size")
		}
		c.RotateSize = n
	}

	if aux.FlushEvery < 0 {
		return errors.Errorf("negative flush_every %d", aux.FlushEvery)
	}
	c.FlushEvery = aux.FlushEvery
	c.Checksums = aux.Checksums

	c.LogLevel = zapcore.InfoLevel
	if aux.LogLevel != "" {
		if err := c.LogLevel.UnmarshalText([]byte(aux.LogLevel)); err != nil {
			return errors.Wrap(err, "log_level")
		}
	}

	c.InfoKey, c.InfoValue = aux.Info.Key, aux.Info.Value
	if c.InfoKey == "" {
		c.InfoKey = "sys_name"
	}
	if c.InfoValue == "" {
		c.InfoValue = "ulog-demo"
	}

	c.Producers = aux.Producers
	if c.Producers == 0 {
		c.Producers = defaultProducers
	}
	if c.Producers < 0 || c.Producers > 256 {
		return errors.Errorf("producers must be between 1 and 256, got %d", c.Producers)
	}
	c.Records = aux.Records
	if c.Records == 0 {
		c.Records = defaultRecords
	}
	if c.Records < 0 {
		return errors.Errorf("negative records %d", c.Records)
	}
	return nil
}

// ReadConfig reads and parses the configuration file at name.
func ReadConfig(name string) (*Config, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	c := new(Config)
	if err := c.Parse(data); err != nil {
		return nil, errors.Wrapf(err, "parse %s", name)
	}
	return c, nil
}
