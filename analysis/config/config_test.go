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
	"embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

//go:embed testdata
var testfsys embed.FS

func parseFromTestDir(t *testing.T, filename string) (*Config, error) {
	b, err := testfsys.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		t.Fatalf("failed to read file %v: %v", filename, err)
	}
	return Parse(b)
}

// copyToTempDir copies a test file into a fresh directory so that reports directories are created there
func copyToTempDir(t *testing.T, filename string) string {
	b, err := testfsys.ReadFile(filepath.Join("testdata", filename))
	if err != nil {
		t.Fatalf("failed to read file %v: %v", filename, err)
	}
	dst := filepath.Join(t.TempDir(), filename)
	if err := os.WriteFile(dst, b, 0600); err != nil {
		t.Fatalf("failed to write %v: %v", dst, err)
	}
	return dst
}

func TestNewDefault(t *testing.T) {
	c := NewDefault()
	if c.Arch != DefaultArch {
		t.Errorf("Default for Arch should be %q, got %q", DefaultArch, c.Arch)
	}
	if c.LogLevel != int(InfoLevel) {
		t.Errorf("Default for LogLevel should be info")
	}
	if c.DisableTaintEngine || c.TrackFlows || c.ReportTaint {
		t.Errorf("Default config should not set any flag")
	}
	if len(c.Seeds.Registers) != 0 || len(c.Seeds.Memory) != 0 {
		t.Errorf("Default config should not have seeds")
	}
	if c.ReportsDir != "" {
		t.Errorf("Default for ReportsDir should be empty")
	}
}

func TestLoadFullConfig(t *testing.T) {
	config, err := parseFromTestDir(t, "full_config.yaml")
	if err != nil {
		t.Fatalf("could not parse full config: %v", err)
	}
	expected := NewDefault()
	expected.Arch = "x86"
	expected.LogLevel = int(DebugLevel)
	expected.TrackFlows = true
	expected.MaxInstructions = 100
	expected.CodeBase = 0x1000
	expected.Seeds = Seeds{
		Registers: []string{"eax", "bl"},
		Memory:    []MemorySeed{{Address: 0x2000, Size: 4}},
	}
	expected.RegisterValues = map[string]uint64{"esi": 0x2000, "ebp": 0x7ff0}

	c1, err1 := yaml.Marshal(config)
	c2, err2 := yaml.Marshal(expected)
	if err1 != nil || err2 != nil {
		t.Fatalf("error marshalling configs: %v, %v", err1, err2)
	}
	if string(c1) != string(c2) {
		t.Errorf("Error in full config:\n%s\nshould be:\n%s", c1, c2)
	}
	a, err := config.Architecture()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.AddressBits != 32 {
		t.Errorf("x86 should have 32-bit addresses, got %d", a.AddressBits)
	}
}

func TestLoadEmptyConfigHasDefaults(t *testing.T) {
	config, err := parseFromTestDir(t, "empty_config.yaml")
	if err != nil {
		t.Fatalf("could not parse empty config: %v", err)
	}
	if !reflect.DeepEqual(config, NewDefault()) {
		t.Errorf("empty config should be the default config, got %+v", config)
	}
}

func TestLoadBadConfigsReturnError(t *testing.T) {
	for _, tc := range []struct {
		file    string
		message string
	}{
		{"bad_format.yaml", "unmarshal"},
		{"bad_arch.yaml", "arm64"},
		{"bad_seed.yaml", "size 0"},
		{"bad_log_level.yaml", "log-level"},
	} {
		t.Run(tc.file, func(t *testing.T) {
			config, err := parseFromTestDir(t, tc.file)
			if config != nil || err == nil {
				t.Fatalf("expected error and nil config for %s", tc.file)
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Errorf("error %q should mention %q", err, tc.message)
			}
		})
	}
}

func TestLoadNonExistentFileReturnsError(t *testing.T) {
	config, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if config != nil || err == nil {
		t.Errorf("Expected error and nil value when trying to load non existent file")
	}
}

func TestLoadWithReports(t *testing.T) {
	fileName := copyToTempDir(t, "config_with_reports.yaml")
	// reports-dir is relative to the working directory
	wd, _ := os.Getwd()
	if err := os.Chdir(filepath.Dir(fileName)); err != nil {
		t.Fatalf("could not change directory: %v", err)
	}
	defer os.Chdir(wd)

	config, err := Load(fileName)
	if err != nil {
		t.Fatalf("Could not load %q: %v", fileName, err)
	}
	if !config.ReportTaint {
		t.Errorf("Expected report-taint to be true in %q", fileName)
	}
	if info, err := os.Stat(config.ReportsDir); err != nil || !info.IsDir() {
		t.Errorf("reports directory %q should have been created", config.ReportsDir)
	}
	// loading twice is fine when the directory exists
	if _, err := Load(fileName); err != nil {
		t.Errorf("second load should succeed: %v", err)
	}
}

func TestLoadWithNoSpecifiedReportsDir(t *testing.T) {
	fileName := copyToTempDir(t, "config_with_reports_no_dir_spec.yaml")
	config, err := Load(fileName)
	if err != nil {
		t.Fatalf("Could not load %q: %v", fileName, err)
	}
	if config.ReportsDir == "" {
		t.Fatalf("Expected a reports dir to be set")
	}
	if filepath.Dir(config.ReportsDir) != filepath.Dir(fileName) {
		t.Errorf("reports dir %q should be next to the config file %q", config.ReportsDir, fileName)
	}
	if config.SourceFile() != fileName {
		t.Errorf("SourceFile should be %q, got %q", fileName, config.SourceFile())
	}
	if config.RelPath("code.bin") != filepath.Join(filepath.Dir(fileName), "code.bin") {
		t.Errorf("RelPath should be relative to the config file")
	}
}

func TestLoadGlobal(t *testing.T) {
	fileName := copyToTempDir(t, "full_config.yaml")
	SetGlobalConfig(fileName)
	defer SetGlobalConfig("")
	config, err := LoadGlobal()
	if err != nil {
		t.Fatalf("could not load global config: %v", err)
	}
	if config.Arch != "x86" {
		t.Errorf("expected arch x86, got %q", config.Arch)
	}
}

func TestLogGroupLevels(t *testing.T) {
	c := NewDefault()
	c.LogLevel = int(WarnLevel)
	l := NewLogGroup(c)
	var b strings.Builder
	l.SetAllOutput(&b)
	l.SetAllFlags(0)
	l.Debugf("hidden %d", 1)
	l.Infof("hidden %d", 2)
	l.Warnf("shown %d", 3)
	l.Errorf("shown %d", 4)
	out := b.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages above warn level should not be printed: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown 3") || !strings.Contains(out, "[ERROR] shown 4") {
		t.Errorf("expected warn and error messages with their own prefixes, got %q", out)
	}
	if l.GetError().Prefix() != "[ERROR] " {
		t.Errorf("GetError should return the error logger")
	}
	if !l.LogsAt(WarnLevel) || l.LogsAt(InfoLevel) {
		t.Errorf("LogsAt inconsistent with level %s", l.Level())
	}
}

func TestSilenceWarn(t *testing.T) {
	c := NewDefault()
	c.LogLevel = int(WarnLevel)
	c.SilenceWarn = true
	l := NewLogGroup(c)
	if l.LogsAt(WarnLevel) {
		t.Errorf("warnings should be silenced")
	}
}
