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

package formatutil

import "testing"

func TestColorsDisabled(t *testing.T) {
	SetColors(false)
	if s := Red("x", 1); s != "x1" {
		t.Errorf("expected plain text without colors, got %q", s)
	}
	if s := Taint(true); s != "tainted" {
		t.Errorf("expected tainted, got %q", s)
	}
	if s := Location("rax", false); s != "rax" {
		t.Errorf("expected rax, got %q", s)
	}
}

func TestColorsEnabled(t *testing.T) {
	SetColors(true)
	defer SetColors(false)
	if s := Red("x"); s != "\033[1;31mx\033[0m" {
		t.Errorf("expected red escape sequence, got %q", s)
	}
	if s := Sanitize(Green("ok")); s != `\x1b[1;32mok\x1b[0m` {
		t.Errorf("escape sequences should be quoted, got %q", s)
	}
}

func TestBytes(t *testing.T) {
	if s := Bytes([]byte{0x48, 0x89, 0xd8}); s != "48 89 d8" {
		t.Errorf("unexpected %q", s)
	}
	if s := Hex(0x2000); s != "0x2000" {
		t.Errorf("unexpected %q", s)
	}
}
