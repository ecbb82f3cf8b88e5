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
	"sort"

	"github.com/yourbasic/graph"
)

// ElementaryCycles returns the elementary cycles of the flow graph, each as the list of labels along the cycle
// starting from its smallest node id, with the first label repeated at the end.
// This uses Donald B. Johnson's algorithm presented in
// "Finding All The Elementary Circuits of a Directed Graph", 1975
func (g *FlowGraph) ElementaryCycles() [][]string {
	s := &cycleState{
		g:       g,
		blocked: map[int64]bool{},
		blist:   map[int64]map[int64]bool{},
	}
	start := int64(0)
	for start < int64(g.Order()) {
		comp, least := s.leastComponent(start)
		if comp == nil {
			break
		}
		s.component = comp
		s.stack = s.stack[:0]
		s.blocked = map[int64]bool{}
		s.blist = map[int64]map[int64]bool{}
		s.circuit(least, least)
		start = least + 1
	}
	res := make([][]string, len(s.cycles))
	for i, cycle := range s.cycles {
		labels := make([]string, len(cycle))
		for j, id := range cycle {
			labels[j] = g.labels[id]
		}
		res[i] = labels
	}
	return res
}

// subgraph is the subgraph induced by the nodes with an id at least min
type subgraph struct {
	g   *FlowGraph
	min int64
}

func (s subgraph) Order() int {
	return s.g.Order()
}

func (s subgraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if int64(v) < s.min {
		return false
	}
	for w := range s.g.edges[int64(v)] {
		if w >= s.min && do(int(w), 1) {
			return true
		}
	}
	return false
}

type cycleState struct {
	g         *FlowGraph
	component map[int64]bool
	blocked   map[int64]bool
	blist     map[int64]map[int64]bool
	stack     []int64
	cycles    [][]int64
}

// leastComponent returns the strongly connected component, of the subgraph induced by the nodes >= start, that
// contains the least node lying on a cycle, and that node.
func (s *cycleState) leastComponent(start int64) (map[int64]bool, int64) {
	var best []int
	least := int64(-1)
	for _, comp := range graph.StrongComponents(subgraph{g: s.g, min: start}) {
		sort.Ints(comp)
		v := int64(comp[0])
		if v < start {
			continue
		}
		if len(comp) < 2 && !s.g.edges[v][v] {
			continue
		}
		if least < 0 || v < least {
			best, least = comp, v
		}
	}
	if best == nil {
		return nil, -1
	}
	m := make(map[int64]bool, len(best))
	for _, v := range best {
		m[int64(v)] = true
	}
	return m, least
}

func (s *cycleState) unblock(u int64) {
	s.blocked[u] = false
	for w := range s.blist[u] {
		delete(s.blist[u], w)
		if s.blocked[w] {
			s.unblock(w)
		}
	}
}

func (s *cycleState) circuit(v int64, start int64) bool {
	found := false
	s.stack = append(s.stack, v)
	s.blocked[v] = true
	for _, w := range s.successors(v) {
		if w == start {
			cycle := make([]int64, len(s.stack), len(s.stack)+1)
			copy(cycle, s.stack)
			s.cycles = append(s.cycles, append(cycle, w))
			found = true
		} else if !s.blocked[w] {
			if s.circuit(w, start) {
				found = true
			}
		}
	}

	if found {
		s.unblock(v)
	} else {
		for _, w := range s.successors(v) {
			if s.blist[w] == nil {
				s.blist[w] = map[int64]bool{}
			}
			s.blist[w][v] = true
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	return found
}

// successors returns the successors of v in the current component, sorted so that cycles are found in a
// deterministic order
func (s *cycleState) successors(v int64) []int64 {
	var succs []int64
	for w := range s.g.edges[v] {
		if s.component[w] {
			succs = append(succs, w)
		}
	}
	sort.Slice(succs, func(i, j int) bool { return succs[i] < succs[j] })
	return succs
}
