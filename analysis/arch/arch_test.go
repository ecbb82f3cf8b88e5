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

package arch

import (
	"errors"
	"testing"
)

func TestX86_64Parents(t *testing.T) {
	a := X86_64()
	tests := []struct {
		name   string
		parent RegID
		offset uint
		size   uint
	}{
		{"rax", RAX, 0, 64},
		{"eax", RAX, 0, 32},
		{"ax", RAX, 0, 16},
		{"ah", RAX, 8, 8},
		{"al", RAX, 0, 8},
		{"CL", RCX, 0, 8},
		{"dil", RDI, 0, 8},
		{"esp", RSP, 0, 32},
		{"r8d", R8, 0, 32},
		{"r15b", R15, 0, 8},
		{"eip", RIP, 0, 32},
		{"xmm15", XMM15, 0, 128},
		{"fs", FS, 0, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := a.Lookup(tt.name)
			if err != nil {
				t.Fatalf("lookup %s: %v", tt.name, err)
			}
			if r.Parent != tt.parent || r.Offset != tt.offset || r.Size != tt.size {
				t.Errorf("%s: got parent=%d offset=%d size=%d, want parent=%d offset=%d size=%d",
					tt.name, r.Parent, r.Offset, r.Size, tt.parent, tt.offset, tt.size)
			}
			p, err := a.Parent(r.ID)
			if err != nil {
				t.Fatalf("parent of %s: %v", tt.name, err)
			}
			if !p.IsParent() {
				t.Errorf("parent %s of %s is not a parent", p, tt.name)
			}
		})
	}
}

func TestX86Parents(t *testing.T) {
	a := X86()
	for _, name := range []string{"eax", "ax", "ah", "al"} {
		r, err := a.Lookup(name)
		if err != nil {
			t.Fatalf("lookup %s: %v", name, err)
		}
		if r.Parent != EAX {
			t.Errorf("%s should alias into eax in 32-bit mode, got parent %d", name, r.Parent)
		}
	}
	for _, id := range []RegID{RAX, R8, SIL, XMM8, RegInvalid} {
		if _, err := a.Register(id); !errors.Is(err, ErrInvalidRegister) {
			t.Errorf("register %d should be invalid in 32-bit mode, got %v", id, err)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := X86_64().Lookup("foo"); !errors.Is(err, ErrInvalidRegister) {
		t.Fatalf("expected ErrInvalidRegister, got %v", err)
	}
}

func TestFamily(t *testing.T) {
	fam, err := X86_64().Family(AH)
	if err != nil {
		t.Fatal(err)
	}
	want := []RegID{RAX, EAX, AX, AH, AL}
	if len(fam) != len(want) {
		t.Fatalf("family of ah: got %v, want %d registers", fam, len(want))
	}
	for i, r := range fam {
		if r.ID != want[i] {
			t.Errorf("family[%d] = %s, want id %d", i, r, want[i])
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"x86", "x86-64", "amd64", "X86_64"} {
		if _, err := ByName(name); err != nil {
			t.Errorf("ByName(%q): %v", name, err)
		}
	}
	if _, err := ByName("arm64"); err == nil {
		t.Errorf("ByName(arm64) should fail")
	}
}
