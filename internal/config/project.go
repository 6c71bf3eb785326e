package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultProjectFile is looked up in the project root when no file is given.
const DefaultProjectFile = "walletbuilder.yaml"

// Project holds the optional per-repository settings read from walletbuilder.yaml.
type Project struct {
	// Product is embedded in pack artifact names: <target>-<product>-<version>.zip.
	Product string      `yaml:"product"`
	Watch   WatchConfig `yaml:"watch"`
}

// WatchConfig tunes the watch task.
type WatchConfig struct {
	QuietWindow time.Duration `yaml:"quiet_window"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	// Ignore lists extra doublestar patterns, matched against paths relative to the project root.
	Ignore []string `yaml:"ignore"`
}

// DefaultProject returns the settings used when walletbuilder.yaml is absent.
func DefaultProject() Project {
	return Project{
		Product: "ton-wallet",
		Watch: WatchConfig{
			QuietWindow: 300 * time.Millisecond,
			MaxDelay:    2 * time.Second,
		},
	}
}

// LoadProject reads path. A missing file yields the defaults; unknown keys are rejected.
func LoadProject(path string) (Project, error) {
	p := DefaultProject()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		return p, fmt.Errorf("read project file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return p, fmt.Errorf("parse project file %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return p, fmt.Errorf("project file %s: %w", path, err)
	}
	return p, nil
}

func (p *Project) validate() error {
	if p.Product == "" {
		return errors.New("product must not be empty")
	}
	if p.Watch.QuietWindow <= 0 {
		return errors.New("watch.quiet_window must be > 0")
	}
	if p.Watch.MaxDelay < p.Watch.QuietWindow {
		return errors.New("watch.max_delay must be >= watch.quiet_window")
	}
	return nil
}
