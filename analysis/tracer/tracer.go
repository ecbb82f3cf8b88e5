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
	"errors"
	"fmt"

	"github.com/awslabs/ar-dyntaint/analysis/arch"
	"github.com/awslabs/ar-dyntaint/analysis/config"
	"github.com/awslabs/ar-dyntaint/analysis/semantics"
	"github.com/awslabs/ar-dyntaint/analysis/taint"
	"github.com/awslabs/ar-dyntaint/internal/graphutil"
	"github.com/davecgh/go-spew/spew"
)

// Tracer processes instructions with a taint engine
type Tracer struct {
	Config    *config.Config
	Logger    *config.LogGroup
	Arch      *arch.Architecture
	Engine    *taint.Engine
	Registers *semantics.RegisterFile

	// Flows is the graph of the flows of tainted data. It is nil unless the config tracks flows.
	Flows *graphutil.FlowGraph

	processed   int
	unsupported int
}

// Step is the outcome of processing one instruction
type Step struct {
	Address      uint64
	Length       int
	Text         string
	Propagations []taint.Propagation

	// Unsupported is set when the instruction was skipped because its data flow is not modelled
	Unsupported error
}

// Result summarizes a run
type Result struct {
	Steps       []Step
	Unsupported int
}

// New returns a tracer for the architecture of cfg, with the seeds of cfg tainted and the register values of cfg
// loaded.
func New(cfg *config.Config, logger *config.LogGroup) (*Tracer, error) {
	a, err := cfg.Architecture()
	if err != nil {
		return nil, err
	}
	t := &Tracer{
		Config:    cfg,
		Logger:    logger,
		Arch:      a,
		Engine:    taint.NewEngine(a),
		Registers: semantics.NewRegisterFile(a),
	}
	if cfg.TrackFlows {
		t.Flows = graphutil.NewFlowGraph()
	}
	if err := t.applyConfig(); err != nil {
		return nil, err
	}
	t.Engine.SetEnabled(!cfg.DisableTaintEngine)
	return t, nil
}

func (t *Tracer) applyConfig() error {
	for name, v := range t.Config.RegisterValues {
		if err := t.Registers.SetByName(name, v); err != nil {
			return fmt.Errorf("register value of %s: %w", name, err)
		}
	}
	for _, name := range t.Config.Seeds.Registers {
		r, err := t.Arch.Lookup(name)
		if err != nil {
			return fmt.Errorf("register seed: %w", err)
		}
		if err := t.Engine.TaintRegister(r.ID); err != nil {
			return err
		}
		t.Logger.Debugf("seed %s", r.Name)
	}
	for _, s := range t.Config.Seeds.Memory {
		m, err := t.Engine.NewMemoryAccess(s.Address, s.Size)
		if err != nil {
			return fmt.Errorf("memory seed: %w", err)
		}
		if err := t.Engine.TaintMemory(m); err != nil {
			return err
		}
		t.Logger.Debugf("seed %s", m)
	}
	return nil
}

// Reset clears the taint state, the flows and the counters, and reloads the seeds and register values of the config
func (t *Tracer) Reset() error {
	t.Engine.Reset()
	t.Registers.Reset()
	if t.Flows != nil {
		t.Flows = graphutil.NewFlowGraph()
	}
	t.processed = 0
	t.unsupported = 0
	return t.applyConfig()
}

// Processed returns the number of instructions processed since the tracer was created or reset
func (t *Tracer) Processed() int {
	return t.processed
}

// Step decodes the instruction at the start of code, located at pc, and propagates taint through it.
// Unsupported instructions are skipped with a warning and reported in the returned step. Decoding and engine errors
// are returned, and leave the taint state unchanged.
func (t *Tracer) Step(code []byte, pc uint64) (Step, error) {
	inst, err := semantics.DecodeInst(t.Arch, code)
	if err != nil {
		return Step{Address: pc}, fmt.Errorf("at %#x: %w", pc, err)
	}
	step := Step{Address: pc, Length: inst.Len}
	ti, err := semantics.Translate(t.Arch, inst, pc, t.Registers)
	switch {
	case errors.Is(err, semantics.ErrUnsupportedInstruction):
		t.unsupported++
		t.Logger.Warnf("skipping %v", err)
		step.Unsupported = err
	case err != nil:
		return step, err
	default:
		step.Text = ti.Text
		if t.Logger.LogsAt(config.TraceLevel) {
			t.Logger.Tracef("%#x: %s", pc, spew.Sdump(ti))
		}
		props, err := t.Engine.ProcessInstruction(ti)
		if err != nil {
			return step, fmt.Errorf("%s at %#x: %w", ti.Text, pc, err)
		}
		step.Propagations = props
		t.recordFlows(props)
	}
	if d := semantics.StackDelta(t.Arch, inst); d != 0 {
		if err := t.Registers.Add(t.Arch.StackPointer, d); err != nil {
			return step, err
		}
	}
	if step.Text == "" {
		step.Text = inst.String()
	}
	t.processed++
	return step, nil
}

func (t *Tracer) recordFlows(props []taint.Propagation) {
	for _, p := range props {
		t.Logger.Debugf("  %s %s <- %s (%s)", p.Operator, t.Location(p.Destination), t.Location(p.Source),
			taintString(p.Tainted))
		if t.Flows == nil || !p.SourceTainted || p.Source.Kind == taint.KindImmediate {
			continue
		}
		from, to := t.Location(p.Source), t.Location(p.Destination)
		if from != to {
			t.Flows.AddFlow(from, to)
		}
	}
}

func taintString(b bool) string {
	if b {
		return "tainted"
	}
	return "clean"
}

// Location returns the name of the location denoted by op: the name of the parent register for registers, and the
// byte range for memory.
func (t *Tracer) Location(op taint.Operand) string {
	if op.Kind == taint.KindRegister {
		if r, err := t.Arch.Parent(op.Register); err == nil {
			return r.Name
		}
	}
	return op.String()
}

// Run processes the instructions of code, loaded at address base, in sequence. It stops at the end of the code,
// when the maximum number of instructions of the config is reached, or when ctx is done.
func (t *Tracer) Run(ctx context.Context, code []byte, base uint64) (*Result, error) {
	res := &Result{}
	offset := 0
	for offset < len(code) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if limit := t.Config.MaxInstructions; limit > 0 && len(res.Steps) >= limit {
			t.Logger.Infof("stopping after %d instructions", limit)
			break
		}
		step, err := t.Step(code[offset:], base+uint64(offset))
		if err != nil {
			return res, err
		}
		res.Steps = append(res.Steps, step)
		if step.Unsupported != nil {
			res.Unsupported++
		}
		offset += step.Length
	}
	t.Logger.Infof("processed %d instructions (%d unsupported), %d tainted registers, %d tainted bytes",
		len(res.Steps), res.Unsupported, len(t.Engine.TaintedRegisters()), len(t.Engine.TaintedMemory()))
	return res, nil
}
