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

package taint

import (
	"github.com/awslabs/ar-dyntaint/internal/funcutil"
)

// MemorySet is the set of tainted byte addresses. Only tainted addresses are stored.
type MemorySet struct {
	addrs map[uint64]bool
}

// NewMemorySet returns an empty memory set
func NewMemorySet() *MemorySet {
	return &MemorySet{addrs: map[uint64]bool{}}
}

// Add taints the byte at addr
func (s *MemorySet) Add(addr uint64) {
	s.addrs[addr] = true
}

// Remove untaints the byte at addr
func (s *MemorySet) Remove(addr uint64) {
	delete(s.addrs, addr)
}

// Contains returns true if the byte at addr is tainted
func (s *MemorySet) Contains(addr uint64) bool {
	return s.addrs[addr]
}

// SetRange taints (tainted = true) or untaints every byte of m.
// m must have been validated.
func (s *MemorySet) SetRange(m MemoryAccess, tainted bool) {
	for i := uint64(0); i < m.Size; i++ {
		if tainted {
			s.addrs[m.Address+i] = true
		} else {
			delete(s.addrs, m.Address+i)
		}
	}
}

// Overlaps returns true if at least one byte of m is tainted
func (s *MemorySet) Overlaps(m MemoryAccess) bool {
	if m.Size > uint64(len(s.addrs)) {
		for addr := range s.addrs {
			if m.Contains(addr) {
				return true
			}
		}
		return false
	}
	for i := uint64(0); i < m.Size; i++ {
		if s.addrs[m.Address+i] {
			return true
		}
	}
	return false
}

// Covers returns true if every byte of m is tainted
func (s *MemorySet) Covers(m MemoryAccess) bool {
	if m.Size > uint64(len(s.addrs)) {
		return false
	}
	for i := uint64(0); i < m.Size; i++ {
		if !s.addrs[m.Address+i] {
			return false
		}
	}
	return true
}

// Len returns the number of tainted bytes
func (s *MemorySet) Len() int {
	return len(s.addrs)
}

// Addresses returns the tainted addresses in increasing order
func (s *MemorySet) Addresses() []uint64 {
	return funcutil.SetToOrderedSlice(s.addrs)
}

// Ranges returns the tainted addresses grouped in maximal contiguous accesses, in increasing order of address
func (s *MemorySet) Ranges() []MemoryAccess {
	var ranges []MemoryAccess
	for _, addr := range s.Addresses() {
		n := len(ranges)
		if n > 0 && ranges[n-1].Last()+1 == addr && ranges[n-1].Last() != ^uint64(0) {
			ranges[n-1].Size++
		} else {
			ranges = append(ranges, MemoryAccess{Address: addr, Size: 1})
		}
	}
	return ranges
}

// Clear untaints all the memory
func (s *MemorySet) Clear() {
	s.addrs = map[uint64]bool{}
}
