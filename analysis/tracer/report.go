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

package tracer

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-dyntaint/analysis/arch"
	"github.com/awslabs/ar-dyntaint/analysis/config"
	"github.com/awslabs/ar-dyntaint/internal/funcutil"
	"github.com/awslabs/ar-dyntaint/internal/graphutil"
	"gopkg.in/yaml.v3"
)

// Report is the final state of a tracer. The tainted memory ranges have the format of the memory seeds of the
// config, so a report can seed a later run.
type Report struct {
	Arch             string              `yaml:"arch"`
	Instructions     int                 `yaml:"instructions"`
	Unsupported      int                 `yaml:"unsupported"`
	TaintedRegisters []string            `yaml:"tainted-registers"`
	TaintedMemory    []config.MemorySeed `yaml:"tainted-memory"`
	Flows            []graphutil.Flow    `yaml:"flows,omitempty"`
	Cycles           [][]string          `yaml:"cycles,omitempty"`
	RegisterValues   map[string]uint64   `yaml:"register-values,omitempty"`
}

// Report returns the current state of the tracer
func (t *Tracer) Report() Report {
	r := Report{
		Arch:           t.Arch.Name,
		Instructions:   t.processed,
		Unsupported:    t.unsupported,
		RegisterValues: t.Registers.Values(),
	}
	r.TaintedRegisters = funcutil.Map(t.Engine.TaintedRegisters(), func(reg arch.Register) string { return reg.Name })
	for _, m := range t.Engine.TaintedRanges() {
		r.TaintedMemory = append(r.TaintedMemory, config.MemorySeed{Address: m.Address, Size: m.Size})
	}
	if t.Flows != nil {
		r.Flows = t.Flows.Flows()
		r.Cycles = t.Flows.ElementaryCycles()
	}
	return r
}

// WriteReport writes the report of the tracer in a new yaml file of dir and returns the file name
func (t *Tracer) WriteReport(dir string) (string, error) {
	f, err := os.CreateTemp(dir, config.ReportFilePattern)
	if err != nil {
		return "", fmt.Errorf("could not create report file: %w", err)
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(t.Report()); err != nil {
		return f.Name(), fmt.Errorf("could not write report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return f.Name(), err
	}
	t.Logger.Infof("report written in %s", f.Name())
	return f.Name(), nil
}

// FlowsFrom returns the locations that tainted data flowed into from the location named from, sorted by name
func (t *Tracer) FlowsFrom(from string) []string {
	if t.Flows == nil {
		return nil
	}
	return t.Flows.Descendants(from)
}
