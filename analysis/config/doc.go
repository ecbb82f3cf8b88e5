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
Package config provides a simple way to manage configuration files.

Use [Load](filename) to load a configuration from a specific filename.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file should be in yaml or json format. The top-level fields can be any of the fields defined in the Config
struct type, including the fields of the embedded [Options]. For example, a valid config file is as follows:

	arch: x86-64
	log-level: 4
	track-flows: true
	seeds:
	  registers: [rdi, rsi]
	  memory:
	    - address: 0x7fff0000
	      size: 64
	register-values:
	  rsp: 0x7fff1000
	  rdi: 0x7fff0000

# Seeds

Seeds are the locations tainted before any instruction is processed: register names of the selected architecture
(any sub-register taints its parent) and memory ranges.

# Register values

The taint engine does not compute concrete values. The register values given in the config are used by the semantics
layer to compute the effective addresses of memory operands, and can be changed from the interactive CLI.
*/
package config
