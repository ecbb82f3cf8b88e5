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

package funcutil

import (
	"strconv"
	"testing"

	"golang.org/x/exp/slices"
)

func TestSetToOrderedSlice(t *testing.T) {
	set := map[uint64]bool{0x2000: true, 0x1000: true, 0x3000: false, 0x1fff: true}
	got := SetToOrderedSlice(set)
	want := []uint64{0x1000, 0x1fff, 0x2000}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if len(SetToOrderedSlice(map[int]bool{})) != 0 {
		t.Errorf("empty set should give an empty slice")
	}
}

func TestMapFilterExists(t *testing.T) {
	a := []int{1, 2, 3, 4}
	if got := Map(a, strconv.Itoa); !slices.Equal(got, []string{"1", "2", "3", "4"}) {
		t.Errorf("Map: got %v", got)
	}
	even := func(x int) bool { return x%2 == 0 }
	if got := Filter(a, even); !slices.Equal(got, []int{2, 4}) {
		t.Errorf("Filter: got %v", got)
	}
	if !Exists(a, even) || Exists([]int{1, 3}, even) {
		t.Errorf("Exists: wrong result")
	}
}
