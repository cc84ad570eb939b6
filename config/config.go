// Package config loads server and layout settings from a yaml file, the
// environment (optionally seeded from a .env file) and command line flags, in
// that order of precedence from lowest to highest.
package config

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/matrix3d/colorscale"
	"github.com/mogaika/matrix3d/grid"
	"github.com/mogaika/matrix3d/matrix"
)

const EnvPrefix = "MATRIX3D_"

type ColorConfig struct {
	Scheme string `yaml:"scheme"`
}

type Config struct {
	Addr        string      `yaml:"addr"`
	Input       string      `yaml:"input"`
	Encoding    string      `yaml:"encoding"`
	Sheet       string      `yaml:"sheet"`
	LabelColumn bool        `yaml:"label_column"`
	Malformed   string      `yaml:"malformed"`
	Watch       bool        `yaml:"watch"`
	HistoryDB   string      `yaml:"history_db"`
	Title       string      `yaml:"title"`
	Grid        grid.Config `yaml:"grid"`
	Color       ColorConfig `yaml:"color"`
}

func Default() *Config {
	return &Config{
		Addr:      ":8000",
		Malformed: string(matrix.PolicyFail),
		Title:     "Matrix",
		Grid:      grid.DefaultConfig(),
		Color:     ColorConfig{Scheme: colorscale.DefaultScheme},
	}
}

// Load reads defaults, then the yaml file at path (if any), then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to open config %q", path)
		}
		defer f.Close()
		if err := cfg.decodeYAML(f); err != nil {
			return nil, errors.Wrapf(err, "Failed to parse config %q", path)
		}
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeYAML(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decodeYAML(bytes.NewReader(data)); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse config")
	}
	return cfg, nil
}

// LoadDotEnv exports variables from a .env file without overriding ones
// already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "Failed to load %q", path)
	}
	return nil
}

type LookupFunc func(key string) (string, bool)

func (c *Config) ApplyEnv(lookup LookupFunc) error {
	get := func(key string) (string, bool) {
		return lookup(EnvPrefix + key)
	}

	if v, ok := get("ADDR"); ok {
		c.Addr = v
	}
	if v, ok := get("INPUT"); ok {
		c.Input = v
	}
	if v, ok := get("ENCODING"); ok {
		c.Encoding = v
	}
	if v, ok := get("SHEET"); ok {
		c.Sheet = v
	}
	if v, ok := get("MALFORMED"); ok {
		c.Malformed = v
	}
	if v, ok := get("HISTORY_DB"); ok {
		c.HistoryDB = v
	}
	if v, ok := get("TITLE"); ok {
		c.Title = v
	}
	if v, ok := get("COLOR_SCHEME"); ok {
		c.Color.Scheme = v
	}

	bools := map[string]*bool{
		"LABEL_COLUMN": &c.LabelColumn,
		"WATCH":        &c.Watch,
	}
	for key, dst := range bools {
		if v, ok := get(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return errors.Wrapf(err, "%s%s", EnvPrefix, key)
			}
			*dst = b
		}
	}

	floats := map[string]*float64{
		"SPACING":      &c.Grid.Spacing,
		"HEIGHT_SCALE": &c.Grid.HeightScale,
		"BAR_WIDTH":    &c.Grid.BarWidth,
		"BAR_DEPTH":    &c.Grid.BarDepth,
	}
	for key, dst := range floats {
		if v, ok := get(key); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return errors.Wrapf(err, "%s%s", EnvPrefix, key)
			}
			*dst = f
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	if _, err := matrix.ParsePolicy(c.Malformed); err != nil {
		return err
	}
	if _, err := LookupEncoding(c.Encoding); err != nil {
		return err
	}
	if _, err := colorscale.New(c.Color.Scheme); err != nil {
		return err
	}
	if c.Watch && c.Input == "" {
		return errors.New("watch needs an input file")
	}
	return nil
}

// MatrixOptions converts the input settings into loader options. Call Validate first.
func (c *Config) MatrixOptions() (matrix.Options, error) {
	policy, err := matrix.ParsePolicy(c.Malformed)
	if err != nil {
		return matrix.Options{}, err
	}
	enc, err := LookupEncoding(c.Encoding)
	if err != nil {
		return matrix.Options{}, err
	}
	return matrix.Options{
		Encoding:    enc,
		LabelColumn: c.LabelColumn,
		Malformed:   policy,
		Sheet:       c.Sheet,
	}, nil
}
