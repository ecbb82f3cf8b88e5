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

// Package semantics translates machine instructions into the operand lists consumed by the taint engine.
//
// Instructions are decoded with golang.org/x/arch/x86/x86asm, in Intel operand order. Each supported instruction is
// classified either as a move (the single source replaces the taint of the destinations) or as a combine (every source
// is unioned into every destination). Instructions without data flow, such as comparisons and jumps, produce an empty
// operand list. Everything else is reported with ErrUnsupportedInstruction.
//
// Memory operands are resolved to concrete byte ranges: the effective address is computed from the values held by a
// RegisterReader, usually a RegisterFile.
package semantics
