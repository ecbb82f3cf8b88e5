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

// Package arch describes the register files of the architectures supported by the taint engine.
//
// Every register is identified by a RegID that is stable across architectures. An architecture resolves each of the
// registers it knows to its parent (the largest register of its aliasing family) and to the bit window the register
// occupies inside that parent. A RegID that an architecture does not define is invalid for that architecture, even if
// another architecture defines it (e.g. RAX in 32-bit mode).
package arch
