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

package graphutil

import (
	"testing"

	"golang.org/x/exp/slices"
)

func TestElementaryCycles(t *testing.T) {
	g := newTestGraph()
	cycles := g.ElementaryCycles()
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %v", cycles)
	}
	if !slices.Equal(cycles[0], []string{"rbx", "[0x3000:8]", "rbx"}) {
		t.Errorf("unexpected cycle %v", cycles[0])
	}
}

func TestElementaryCyclesSharedNodes(t *testing.T) {
	g := NewFlowGraph()
	// a -> b -> a, b -> c -> a, c -> c
	g.AddFlow("a", "b")
	g.AddFlow("b", "a")
	g.AddFlow("b", "c")
	g.AddFlow("c", "a")
	g.AddFlow("c", "c")
	g.AddFlow("d", "a")
	cycles := g.ElementaryCycles()
	want := [][]string{
		{"a", "b", "a"},
		{"a", "b", "c", "a"},
		{"c", "c"},
	}
	if len(cycles) != len(want) {
		t.Fatalf("expected %v, got %v", want, cycles)
	}
	for i := range want {
		if !slices.Equal(cycles[i], want[i]) {
			t.Errorf("cycle %d: expected %v, got %v", i, want[i], cycles[i])
		}
	}
}

func TestElementaryCyclesAcyclic(t *testing.T) {
	g := NewFlowGraph()
	g.AddFlow("rax", "rbx")
	g.AddFlow("rbx", "rcx")
	g.AddFlow("rax", "rcx")
	if cycles := g.ElementaryCycles(); len(cycles) != 0 {
		t.Errorf("expected no cycle, got %v", cycles)
	}
	if cycles := NewFlowGraph().ElementaryCycles(); len(cycles) != 0 {
		t.Errorf("expected no cycle in the empty graph, got %v", cycles)
	}
}
