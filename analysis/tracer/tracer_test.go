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
	"context"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"reflect"
	"testing"

	"github.com/awslabs/ar-dyntaint/analysis/arch"
	"github.com/awslabs/ar-dyntaint/analysis/config"
	"github.com/awslabs/ar-dyntaint/analysis/semantics"
	"gopkg.in/yaml.v3"
)

// program moves rbx through rax and the stack into rcx, then stores rcx at rdi
const program = "4889d8" + // mov rax, rbx
	"50" + // push rax
	"4831c0" + // xor rax, rax
	"59" + // pop rcx
	"48890f" + // mov [rdi], rcx
	"0f0b" + // ud2
	"f4" // hlt

func testConfig() *config.Config {
	cfg := config.NewDefault()
	cfg.TrackFlows = true
	cfg.Seeds.Registers = []string{"rbx"}
	cfg.RegisterValues = map[string]uint64{"rsp": 0x8000, "rdi": 0x3000}
	return cfg
}

func newTestTracer(t *testing.T, cfg *config.Config) *Tracer {
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(io.Discard)
	tr, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("could not create tracer: %v", err)
	}
	return tr
}

func code(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestRun(t *testing.T) {
	tr := newTestTracer(t, testConfig())
	res, err := tr.Run(context.Background(), code(t, program), 0x1000)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(res.Steps) != 7 || res.Unsupported != 1 {
		t.Fatalf("expected 7 steps with 1 unsupported, got %d and %d", len(res.Steps), res.Unsupported)
	}
	if !errors.Is(res.Steps[5].Unsupported, semantics.ErrUnsupportedInstruction) {
		t.Errorf("ud2 should be unsupported, got %v", res.Steps[5].Unsupported)
	}
	if res.Steps[1].Address != 0x1003 {
		t.Errorf("second instruction should be at 0x1003, got %#x", res.Steps[1].Address)
	}

	report := tr.Report()
	if !reflect.DeepEqual(report.TaintedRegisters, []string{"rbx", "rcx"}) {
		t.Errorf("expected rbx and rcx tainted, got %v", report.TaintedRegisters)
	}
	wantMem := []config.MemorySeed{{Address: 0x3000, Size: 8}, {Address: 0x7ff8, Size: 8}}
	if !reflect.DeepEqual(report.TaintedMemory, wantMem) {
		t.Errorf("expected %v tainted, got %v", wantMem, report.TaintedMemory)
	}
	if report.Instructions != 7 || report.Unsupported != 1 {
		t.Errorf("unexpected counters in report %+v", report)
	}
	if v, _ := tr.Registers.RegisterValue(tr.Arch.StackPointer); v != 0x8000 {
		t.Errorf("push and pop should leave rsp unchanged, got %#x", v)
	}

	want := []string{"[0x3000:8]", "[0x7ff8:8]", "rax", "rcx"}
	if got := tr.FlowsFrom("rbx"); !reflect.DeepEqual(got, want) {
		t.Errorf("expected flows from rbx to %v, got %v", want, got)
	}
	if !tr.Flows.Reaches("rax", "[0x3000:8]") {
		t.Errorf("rax should reach [0x3000:8]")
	}
	if tr.Flows.Reaches("rcx", "rax") {
		t.Errorf("rcx should not reach rax")
	}
}

func TestRunMaxInstructions(t *testing.T) {
	cfg := testConfig()
	cfg.MaxInstructions = 2
	tr := newTestTracer(t, cfg)
	res, err := tr.Run(context.Background(), code(t, program), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Steps) != 2 {
		t.Errorf("expected 2 steps, got %d", len(res.Steps))
	}
}

func TestRunCancelled(t *testing.T) {
	tr := newTestTracer(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := tr.Run(ctx, code(t, program), 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(res.Steps) != 0 {
		t.Errorf("no instruction should be processed")
	}
}

func TestRunDecodeError(t *testing.T) {
	tr := newTestTracer(t, testConfig())
	// mov rax, rbx followed by a truncated instruction
	res, err := tr.Run(context.Background(), code(t, "4889d80f"), 0)
	if !errors.Is(err, semantics.ErrDecode) {
		t.Errorf("expected a decoding error, got %v", err)
	}
	if len(res.Steps) != 1 {
		t.Errorf("the first instruction should have been processed")
	}
}

func TestDisabledEngine(t *testing.T) {
	cfg := testConfig()
	cfg.DisableTaintEngine = true
	tr := newTestTracer(t, cfg)
	step, err := tr.Step(code(t, "4889d8"), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(step.Propagations) != 0 {
		t.Errorf("disabled engine should not propagate")
	}
	if ok, _ := tr.Engine.IsRegisterTainted(arch.RAX); ok {
		t.Errorf("rax should stay clean")
	}
}

func TestBadSeeds(t *testing.T) {
	cfg := testConfig()
	cfg.Seeds.Registers = []string{"r8"}
	cfg.Arch = "x86"
	cfg.RegisterValues = nil
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(io.Discard)
	if _, err := New(cfg, logger); err == nil {
		t.Errorf("r8 does not exist in 32-bit mode")
	}
}

func TestReset(t *testing.T) {
	tr := newTestTracer(t, testConfig())
	if _, err := tr.Run(context.Background(), code(t, program), 0); err != nil {
		t.Fatal(err)
	}
	if err := tr.Reset(); err != nil {
		t.Fatal(err)
	}
	report := tr.Report()
	if !reflect.DeepEqual(report.TaintedRegisters, []string{"rbx"}) || len(report.TaintedMemory) != 0 {
		t.Errorf("reset should restore the seeds, got %+v", report)
	}
	if tr.Processed() != 0 || tr.Flows.NumEdges() != 0 {
		t.Errorf("reset should clear counters and flows")
	}
}

func TestWriteReport(t *testing.T) {
	tr := newTestTracer(t, testConfig())
	if _, err := tr.Run(context.Background(), code(t, program), 0); err != nil {
		t.Fatal(err)
	}
	name, err := tr.WriteReport(t.TempDir())
	if err != nil {
		t.Fatalf("could not write report: %v", err)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	var r Report
	if err := yaml.Unmarshal(b, &r); err != nil {
		t.Fatalf("report is not valid yaml: %v", err)
	}
	if !reflect.DeepEqual(r, tr.Report()) {
		t.Errorf("report file %+v differs from report %+v", r, tr.Report())
	}
}
