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

// Package graphutil implements the taint flow graph: a directed graph between taint locations (registers or memory
// ranges) where an edge from x to y means that tainted data flowed from x into y.
//
// The graph implements both the Iterator interface of github.com/yourbasic/graph and the Graph interface of
// gonum.org/v1/gonum/graph so that algorithms from either library can run on it.
package graphutil

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/topo"
)

// FlowGraph is a graph of taint flows between labelled locations. Node ids are allocated contiguously from 0 in
// order of insertion.
type FlowGraph struct {
	// ids maps labels to node ids
	ids map[string]int64

	// labels maps node ids to labels
	labels []string

	// edges is an adjacency map: edges[x][y] means there is a directed edge from x to y
	edges map[int64]map[int64]bool

	// reverse is the transposed adjacency map
	reverse map[int64]map[int64]bool

	numEdges int
}

// NewFlowGraph returns an empty flow graph
func NewFlowGraph() *FlowGraph {
	return &FlowGraph{
		ids:     map[string]int64{},
		edges:   map[int64]map[int64]bool{},
		reverse: map[int64]map[int64]bool{},
	}
}

// AddNode returns the id of the node labelled label, adding the node if needed
func (g *FlowGraph) AddNode(label string) int64 {
	if id, ok := g.ids[label]; ok {
		return id
	}
	id := int64(len(g.labels))
	g.ids[label] = id
	g.labels = append(g.labels, label)
	g.edges[id] = map[int64]bool{}
	g.reverse[id] = map[int64]bool{}
	return id
}

// AddFlow adds an edge from the location labelled from to the location labelled to. Returns true if the edge is new.
func (g *FlowGraph) AddFlow(from string, to string) bool {
	x := g.AddNode(from)
	y := g.AddNode(to)
	if g.edges[x][y] {
		return false
	}
	g.edges[x][y] = true
	g.reverse[y][x] = true
	g.numEdges++
	return true
}

// ID returns the id of the node labelled label
func (g *FlowGraph) ID(label string) (int64, bool) {
	id, ok := g.ids[label]
	return id, ok
}

// Label returns the label of the node with the given id, or "" if there is none
func (g *FlowGraph) Label(id int64) string {
	if id < 0 || id >= int64(len(g.labels)) {
		return ""
	}
	return g.labels[id]
}

// NumEdges returns the number of edges in the graph
func (g *FlowGraph) NumEdges() int {
	return g.numEdges
}

// Flow is an edge of the flow graph
type Flow struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Flows returns all the edges of the graph, sorted by source then destination label
func (g *FlowGraph) Flows() []Flow {
	flows := make([]Flow, 0, g.numEdges)
	for x, succs := range g.edges {
		for y := range succs {
			flows = append(flows, Flow{From: g.labels[x], To: g.labels[y]})
		}
	}
	sort.Slice(flows, func(i, j int) bool {
		if flows[i].From != flows[j].From {
			return flows[i].From < flows[j].From
		}
		return flows[i].To < flows[j].To
	})
	return flows
}

// Reaches returns true if there is a path from the location labelled from to the location labelled to.
// A location always reaches itself when it is in the graph.
func (g *FlowGraph) Reaches(from string, to string) bool {
	x, ok := g.ids[from]
	if !ok {
		return false
	}
	y, ok := g.ids[to]
	if !ok {
		return false
	}
	return topo.PathExistsIn(g, FlowNode{id: x, label: from}, FlowNode{id: y, label: to})
}

// *************** Graph interface implementation **********************

// Node implements the Graph interface
func (g *FlowGraph) Node(id int64) graph.Node {
	if id < 0 || id >= int64(len(g.labels)) {
		return nil
	}
	return FlowNode{id: id, label: g.labels[id]}
}

// Nodes returns all the nodes of the graph, ordered by id
func (g *FlowGraph) Nodes() graph.Nodes {
	if len(g.labels) == 0 {
		return graph.Empty
	}
	nodes := make([]graph.Node, len(g.labels))
	for i, l := range g.labels {
		nodes[i] = FlowNode{id: int64(i), label: l}
	}
	return iterator.NewOrderedNodes(nodes)
}

// From returns the nodes that id flows into
func (g *FlowGraph) From(id int64) graph.Nodes {
	return g.nodeSet(g.edges[id])
}

// To returns the nodes that flow into id
func (g *FlowGraph) To(id int64) graph.Nodes {
	return g.nodeSet(g.reverse[id])
}

func (g *FlowGraph) nodeSet(ids map[int64]bool) graph.Nodes {
	if len(ids) == 0 {
		return graph.Empty
	}
	keys := make([]int64, 0, len(ids))
	for k := range ids {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	nodes := make([]graph.Node, len(keys))
	for i, k := range keys {
		nodes[i] = FlowNode{id: k, label: g.labels[k]}
	}
	return iterator.NewOrderedNodes(nodes)
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node identifiers
func (g *FlowGraph) HasEdgeBetween(xid, yid int64) bool {
	return g.edges[xid][yid] || g.edges[yid][xid]
}

// HasEdgeFromTo returns whether an edge exists from uid to vid
func (g *FlowGraph) HasEdgeFromTo(uid, vid int64) bool {
	return g.edges[uid][vid]
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (g *FlowGraph) Edge(uid, vid int64) graph.Edge {
	if !g.edges[uid][vid] {
		return nil
	}
	return FlowEdge{from: FlowNode{id: uid, label: g.labels[uid]}, to: FlowNode{id: vid, label: g.labels[vid]}}
}

// FlowNode is a node of the flow graph
type FlowNode struct {
	id    int64
	label string
}

// ID returns the id of the node
func (n FlowNode) ID() int64 {
	return n.id
}

func (n FlowNode) String() string {
	return n.label
}

// FlowEdge is a directed edge of the flow graph
type FlowEdge struct {
	from FlowNode
	to   FlowNode
}

// From returns the source of the edge
func (e FlowEdge) From() graph.Node {
	return e.from
}

// To returns the destination of the edge
func (e FlowEdge) To() graph.Node {
	return e.to
}

// ReversedEdge returns the edge in the other direction
func (e FlowEdge) ReversedEdge() graph.Edge {
	return FlowEdge{from: e.to, to: e.from}
}
