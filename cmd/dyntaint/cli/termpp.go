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

package cli

import (
	"fmt"

	"github.com/awslabs/ar-dyntaint/analysis/arch"
	"github.com/awslabs/ar-dyntaint/analysis/taint"
	"golang.org/x/term"
)

// WriteErr formats the format string with a and then prints on the terminal in red with a new line
func WriteErr(tt *term.Terminal, format string, a ...any) {
	writelnEscape(tt, tt.Escape.Red, format, a...)
}

// WriteSuccess formats the format string with a and then prints on the terminal in green with a new line
func WriteSuccess(tt *term.Terminal, format string, a ...any) {
	writelnEscape(tt, tt.Escape.Green, format, a...)
}

func writeFmt(tt *term.Terminal, format string, a ...any) {
	var s string
	if len(a) > 0 {
		s = fmt.Sprintf(format, a...)
	} else {
		s = format
	}
	tt.Write([]byte(s))
}

func writelnEscape(tt *term.Terminal, escape []byte, format string, a ...any) {
	tt.Write(escape)
	writeFmt(tt, format, a...)
	tt.Write(tt.Escape.Reset)
	tt.Write([]byte("\n"))
}

// taintEscape is red for tainted locations, green for clean ones
func taintEscape(tt *term.Terminal, tainted bool) []byte {
	if tainted {
		return tt.Escape.Red
	}
	return tt.Escape.Green
}

func taintWord(b bool) string {
	if b {
		return "tainted"
	}
	return "clean"
}

// writeVerdict prints the taint of the location loc on one line, followed by detail if not empty.
func writeVerdict(tt *term.Terminal, loc string, tainted bool, detail string) {
	if detail != "" {
		detail = " " + detail
	}
	writelnEscape(tt, taintEscape(tt, tainted), "%s is %s%s.", loc, taintWord(tainted), detail)
}

// coverage returns "all bytes" or "some bytes" for a tainted memory access wider than a byte
func coverage(e *taint.Engine, m taint.MemoryAccess) (string, error) {
	if m.Size <= 1 {
		return "", nil
	}
	full, err := e.IsMemoryFullyTainted(m)
	if err != nil {
		return "", err
	}
	if full {
		return "(all bytes)", nil
	}
	return "(some bytes)", nil
}

type displayElement struct {
	content string
	escape  []byte
}

// registerEntries returns the names of regs colored by their taint
func registerEntries(tt *term.Terminal, regs []arch.Register, tainted bool) []displayElement {
	entries := make([]displayElement, len(regs))
	for i, r := range regs {
		entries[i] = displayElement{content: r.Name, escape: taintEscape(tt, tainted)}
	}
	return entries
}

// writeRanges prints one tainted memory range per line with its size, then a total
func writeRanges(tt *term.Terminal, ranges []taint.MemoryAccess) {
	total := uint64(0)
	for _, m := range ranges {
		writeFmt(tt, "  %s%-24s%s %d bytes\n", tt.Escape.Red, m, tt.Escape.Reset, m.Size)
		total += m.Size
	}
	WriteSuccess(tt, "(%d ranges, %d bytes)", len(ranges), total)
}

// writeEntries prints the entries in columns that fit the width of the terminal
func writeEntries(tt *term.Terminal, entries []displayElement, prefix string) {
	if len(entries) == 0 {
		return
	}
	maxLen := 0
	for _, entry := range entries {
		maxLen = max(maxLen, len(entry.content))
	}
	width := maxLen + 3
	cols := max(state.TermWidth/width, 1)
	rows := (len(entries) + cols - 1) / cols
	for row := 0; row < rows; row++ {
		writeFmt(tt, prefix)
		for col := 0; col < cols; col++ {
			if i := col*rows + row; i < len(entries) {
				writeFmt(tt, "%s%-*s%s", entries[i].escape, width, entries[i].content, tt.Escape.Reset)
			}
		}
		writeFmt(tt, "\n")
	}
}
