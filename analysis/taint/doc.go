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

/*
Package taint implements the dynamic taint engine: it tracks which registers and which bytes of memory are influenced
by data designated as tainted, and propagates that information instruction by instruction.

The engine owns two stores. The [RegisterTable] tracks taint at the granularity of parent registers: tainting AL taints
RAX, and querying EAX reads the flag of RAX. The [MemorySet] tracks taint per byte address and only stores tainted
addresses.

Propagation follows two families of operators. Assignment operators (e.g. [Engine.TaintAssignmentRegisterMemory])
model data copies: the destination takes the taint of the source. Union operators (e.g.
[Engine.TaintUnionMemoryRegister]) model combining operations: the destination keeps its taint and accumulates the
taint of the source. Memory destinations are always updated uniformly over the whole access.

The [Engine.ProcessInstruction] hook is the entry point used by an instruction processing pipeline: given the operand
list of an [Instruction] and whether it is a move, it selects the operator for each destination and source pair, and
returns the list of [Propagation] that were applied.

An Engine is not safe for concurrent use. Independent engines share no state.
*/
package taint
