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

package config

const (
	// DefaultArch is the architecture used when the config file does not specify one
	DefaultArch = "x86-64"

	// DefaultMaxInstructions is the default bound on the number of instructions processed by a run. 0 means no
	// bound
	DefaultMaxInstructions = 0

	// ReportFilePattern is the pattern of the taint report file names created in the reports directory
	ReportFilePattern = "taint-*.yaml"
)
