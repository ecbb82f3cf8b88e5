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

package tools

import "regexp"

// Captures errors happening before any instruction is processed (config could not load)
var regexCouldNotLoad = regexp.MustCompile("failed to load config file")

// Captures unknown architectures, in the config or on the command line
var unknownArch = regexp.MustCompile("unknown architecture")

// Captures bytes that are not instructions of the architecture
var decodeError = regexp.MustCompile("could not decode instruction")

// Captures the kind of error that happens when a flag is put after the code file
var flagAfterFile = regexp.MustCompile(`open -\w+: no such file`)

// HintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func HintForErrorMessage(errMsg string) string {
	if regexCouldNotLoad.MatchString(errMsg) {
		if unknownArch.MatchString(errMsg) {
			return "the arch option of the config should be x86 or x86-64"
		}
		return "make sure the config file exists and is valid yaml"
	}
	if unknownArch.MatchString(errMsg) {
		return "the -arch flag should be x86 or x86-64"
	}
	if decodeError.MatchString(errMsg) {
		return "check that the code is raw machine code (not an ELF or PE file) and that the architecture is right"
	}
	if flagAfterFile.MatchString(errMsg) {
		return "all command line flags should be before the path to the code file"
	}
	return ""
}
