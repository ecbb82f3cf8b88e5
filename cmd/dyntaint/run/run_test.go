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

package run

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/awslabs/ar-dyntaint/analysis/config"
	"github.com/awslabs/ar-dyntaint/analysis/tracer"
	"github.com/awslabs/ar-dyntaint/internal/formatutil"
)

func TestNewFlags(t *testing.T) {
	flags, err := NewFlags([]string{"-arch", "x86", "-hex", "8d 04 06", "-base", "4096"})
	if err != nil {
		t.Fatal(err)
	}
	code, err := ReadCode(flags)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(code, []byte{0x8d, 0x04, 0x06}) {
		t.Errorf("unexpected code %x", code)
	}
	if flags.base != 0x1000 || flags.Arch != "x86" {
		t.Errorf("unexpected flags %+v", flags)
	}
	flags, err = NewFlags([]string{"-hex", "zz"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ReadCode(flags); err == nil {
		t.Errorf("zz is not hexadecimal")
	}
	flags, _ = NewFlags(nil)
	if _, err := ReadCode(flags); err == nil {
		t.Errorf("a code file is required without -hex")
	}
}

func TestPrint(t *testing.T) {
	formatutil.SetColors(false)
	cfg := config.NewDefault()
	cfg.Arch = "x86"
	cfg.TrackFlows = true
	cfg.Seeds.Registers = []string{"eax"}
	cfg.RegisterValues = map[string]uint64{"esi": 0x2000}
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(io.Discard)
	tr, err := tracer.New(cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	// lea eax, [esi+eax] ; mov [esi], eax ; ud2
	res, err := tr.Run(context.Background(), []byte{0x8d, 0x04, 0x06, 0x89, 0x06, 0x0f, 0x0b}, 0x400000)
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	PrintSteps(&b, tr, res.Steps)
	PrintState(&b, tr)
	out := b.String()
	for _, want := range []string{
		"0x400000", "eax=tainted", "[0x2000:4]=tainted", "unsupported",
		"Tainted registers: eax", "Tainted memory: [0x2000:4]", "eax -> [0x2000:4]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q:\n%s", want, out)
		}
	}
}
