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

// Package formatutil manipulates string colors and other formatting operations.
package formatutil

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Colors are only emitted when standard output is a terminal. Tests and pipes see plain text.
var colorsEnabled = term.IsTerminal(int(os.Stdout.Fd()))

// SetColors forces colors on or off
func SetColors(enabled bool) {
	colorsEnabled = enabled
}

var (
	Bold    = Color("\033[1m%s\033[0m")
	Faint   = Color("\033[2m%s\033[0m")
	Italic  = Color("\033[3m%s\033[0m")
	Red     = Color("\033[1;31m%s\033[0m")
	Green   = Color("\033[1;32m%s\033[0m")
	Yellow  = Color("\033[1;33m%s\033[0m")
	Purple  = Color("\033[1;34m%s\033[0m")
	Magenta = Color("\033[1;35m%s\033[0m")
	Cyan    = Color("\033[1;36m%s\033[0m")
)

// Color returns a function that formats its arguments like fmt.Sprint, wrapped in colorString when colors are on
func Color(colorString string) func(...interface{}) string {
	return func(args ...interface{}) string {
		if colorsEnabled {
			return fmt.Sprintf(colorString, fmt.Sprint(args...))
		}
		return fmt.Sprint(args...)
	}
}

// Taint returns "tainted" in red or "clean" in green
func Taint(tainted bool) string {
	if tainted {
		return Red("tainted")
	}
	return Green("clean")
}

// Location colors a location name by its taint
func Location(name string, tainted bool) string {
	if tainted {
		return Red(name)
	}
	return name
}

// Hex formats an address
func Hex(x uint64) string {
	return fmt.Sprintf("%#x", x)
}

// Bytes formats a byte slice as space-separated hexadecimal pairs
func Bytes(b []byte) string {
	parts := make([]string, len(b))
	for i, x := range b {
		parts[i] = fmt.Sprintf("%02x", x)
	}
	return strings.Join(parts, " ")
}

// Sanitize is a simple sanitizer that removes all escape sequences
func Sanitize(s string) string {
	r := fmt.Sprintf("%q", s)
	if len(r) >= 2 {
		return r[1 : len(r)-1]
	}
	return r
}
