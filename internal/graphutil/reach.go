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

// Order implements the graph.Iterator interface: the number of nodes
func (g *FlowGraph) Order() int {
	return len(g.labels)
}

// Visit implements the graph.Iterator interface for the FlowGraph
func (g *FlowGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	for w := range g.edges[int64(v)] {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// Descendants returns the labels of every location that data from the location labelled from flowed into, directly
// or transitively, sorted. The location itself is not included unless it lies on a cycle.
func (g *FlowGraph) Descendants(from string) []string {
	x, ok := g.ids[from]
	if !ok {
		return nil
	}
	seen := map[int]bool{}
	graph.BFS(g, int(x), func(_, w int, _ int64) {
		seen[w] = true
	})
	// BFS does not revisit the start node, check for a cycle back to it
	if g.edges[x][x] {
		seen[int(x)] = true
	}
	for w := range seen {
		if g.edges[int64(w)][x] {
			seen[int(x)] = true
			break
		}
	}
	labels := make([]string, 0, len(seen))
	for w := range seen {
		labels = append(labels, g.labels[w])
	}
	sort.Strings(labels)
	return labels
}

// CyclicComponents returns the strongly connected components of size at least two, each sorted by label. Such
// components are locations whose taint feeds back into itself, e.g. a register spilled and reloaded.
func (g *FlowGraph) CyclicComponents() [][]string {
	var comps [][]string
	for _, comp := range graph.StrongComponents(g) {
		if len(comp) < 2 {
			continue
		}
		labels := make([]string, len(comp))
		for i, v := range comp {
			labels[i] = g.labels[v]
		}
		sort.Strings(labels)
		comps = append(comps, labels)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}
