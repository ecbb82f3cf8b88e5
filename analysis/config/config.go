// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path"

	"github.com/awslabs/ar-dyntaint/analysis/arch"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config contains the options of the taint engine, the taint seeds and the concrete register values used for address
// computations.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:",inline"`

	sourceFile string

	// Seeds are the locations tainted before processing any instruction
	Seeds Seeds `yaml:"seeds"`

	// RegisterValues maps register names to their concrete values
	RegisterValues map[string]uint64 `yaml:"register-values"`
}

// Seeds lists the initially tainted registers and memory ranges
type Seeds struct {
	// Registers are register names, e.g. rax or al
	Registers []string `yaml:"registers"`

	// Memory are the tainted memory ranges
	Memory []MemorySeed `yaml:"memory"`
}

// MemorySeed is a range of Size bytes starting at Address
type MemorySeed struct {
	Address uint64 `yaml:"address"`
	Size    uint64 `yaml:"size"`
}

// Options contains the options of the engine and of the reports
type Options struct {
	// Arch is the name of the architecture of the code: x86 or x86-64
	Arch string `yaml:"arch"`

	// DisableTaintEngine turns the per-instruction taint hook off. Taint can still be manipulated explicitly.
	DisableTaintEngine bool `yaml:"disable-taint-engine"`

	// TrackFlows records a graph of the flows of tainted data between locations
	TrackFlows bool `yaml:"track-flows"`

	// MaxInstructions bounds the number of instructions processed by a run. If MaxInstructions <= 0, it is ignored.
	MaxInstructions int `yaml:"max-instructions"`

	// CodeBase is the address of the first byte of the code processed by a run
	CodeBase uint64 `yaml:"code-base"`

	// ReportsDir is the directory where all the reports will be stored. If the yaml config file this config struct has
	// been loaded does not specify a ReportsDir but sets ReportTaint to true, then ReportsDir will be created
	// in the folder of the config file.
	ReportsDir string `yaml:"reports-dir"`

	// ReportTaint specifies whether the final taint state and the flows should be written to a yaml report file named
	// taint-*.yaml in the reports directory
	ReportTaint bool `yaml:"report-taint"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns a default config: x86-64, taint engine enabled, no seed.
func NewDefault() *Config {
	return &Config{
		sourceFile:     "",
		Seeds:          Seeds{},
		RegisterValues: map[string]uint64{},
		Options: Options{
			Arch:               DefaultArch,
			DisableTaintEngine: false,
			TrackFlows:         false,
			MaxInstructions:    DefaultMaxInstructions,
			CodeBase:           0,
			ReportsDir:         "",
			ReportTaint:        false,
			LogLevel:           int(InfoLevel),
			SilenceWarn:        false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("could not load config file %s: %w", filename, err)
	}
	cfg.sourceFile = filename

	if cfg.ReportTaint {
		if err := setReportsDir(cfg, filename); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Parse parses a configuration from yaml (or json) content and validates it
func Parse(content []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if c.LogLevel == 0 {
		c.LogLevel = int(InfoLevel)
	}
	if c.LogLevel < int(ErrLevel) || c.LogLevel > int(TraceLevel) {
		return fmt.Errorf("log-level %d is not between %d and %d", c.LogLevel, ErrLevel, TraceLevel)
	}
	if c.Arch == "" {
		c.Arch = DefaultArch
	}
	if _, err := arch.ByName(c.Arch); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for i, m := range c.Seeds.Memory {
		if m.Size == 0 {
			return fmt.Errorf("memory seed %d at %#x has size 0", i, m.Address)
		}
	}
	if c.RegisterValues == nil {
		c.RegisterValues = map[string]uint64{}
	}
	return nil
}

func setReportsDir(c *Config, filename string) error {
	if c.ReportsDir == "" {
		tmpdir, err := os.MkdirTemp(path.Dir(filename), "*-report")
		if err != nil {
			return fmt.Errorf("could not create temp dir for reports")
		}
		c.ReportsDir = tmpdir
	} else {
		err := os.Mkdir(c.ReportsDir, 0750)
		if err != nil {
			if !os.IsExist(err) {
				return fmt.Errorf("could not create directory %s", c.ReportsDir)
			}
		}
	}
	return nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// SourceFile returns the name of the file the config was loaded from, if any
func (c Config) SourceFile() string {
	return c.sourceFile
}

// Architecture returns the architecture named by the config
func (c Config) Architecture() (*arch.Architecture, error) {
	return arch.ByName(c.Arch)
}
