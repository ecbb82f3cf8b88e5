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

// Package tracer runs the taint engine over a sequence of machine instructions.
//
// A Tracer owns a taint engine, the concrete register values used to resolve memory operands, and optionally a graph
// of the flows of tainted data between locations. Instructions are decoded one at a time and their operands are
// passed to the engine's instruction hook. Stack-pointer updates of push, pop, call and ret are applied to the
// register values so that consecutive stack accesses resolve to the right addresses.
package tracer
