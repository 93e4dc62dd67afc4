// Copyright ©2026 The Pacl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vecops

import "math"

// BlockVector is a Vector composed of a fixed sequence of Vector slots,
// indexed contiguously as though the blocks were concatenated. It stands in
// for "block-structured state" (spec.md §4.1) — for example a FoldProblem
// unknown (x, p, ℓ) assembled from a state block and two scalar blocks, or a
// coupled multi-field PDE state.
//
// Index i addresses the i-th scalar of the concatenation; BlockVector walks
// its blocks to locate it. This is O(nBlocks) per element access, which is
// fine for the small number of blocks (2-3) this module ever assembles.
type BlockVector struct {
	Blocks []Vector
}

// NewBlockVector returns a BlockVector over the given blocks. The blocks are
// not copied; BlockVector takes ownership the way a Vector slot always does.
func NewBlockVector(blocks ...Vector) *BlockVector {
	return &BlockVector{Blocks: blocks}
}

func (b *BlockVector) Len() int {
	n := 0
	for _, blk := range b.Blocks {
		n += blk.Len()
	}
	return n
}

// locate returns the block index and in-block offset for global index i.
func (b *BlockVector) locate(i int) (block, offset int) {
	for bi, blk := range b.Blocks {
		n := blk.Len()
		if i < n {
			return bi, i
		}
		i -= n
	}
	panic("vecops: index out of range")
}

func (b *BlockVector) At(i int) float64 {
	bi, off := b.locate(i)
	return b.Blocks[bi].At(off)
}

func (b *BlockVector) Set(i int, v float64) {
	bi, off := b.locate(i)
	b.Blocks[bi].Set(off, v)
}

func (b *BlockVector) Dot(x Vector) float64 {
	ox, ok := x.(*BlockVector)
	sum := 0.0
	if ok && sameShape(b, ox) {
		for i, blk := range b.Blocks {
			sum += blk.Dot(ox.Blocks[i])
		}
		return sum
	}
	for i := 0; i < b.Len(); i++ {
		sum += b.At(i) * x.At(i)
	}
	return sum
}

func (b *BlockVector) Norm() float64 {
	sum := 0.0
	for _, blk := range b.Blocks {
		n := blk.Norm()
		sum += n * n
	}
	return math.Sqrt(sum)
}

func (b *BlockVector) NormInf() float64 {
	max := 0.0
	for _, blk := range b.Blocks {
		if n := blk.NormInf(); n > max {
			max = n
		}
	}
	return max
}

// AddScaled performs b ← α·x + b, block by block when x is also a
// BlockVector with matching block lengths, otherwise element by element.
func (b *BlockVector) AddScaled(alpha float64, x Vector) {
	if ox, ok := x.(*BlockVector); ok && sameShape(b, ox) {
		for i, blk := range b.Blocks {
			blk.AddScaled(alpha, ox.Blocks[i])
		}
		return
	}
	for i := 0; i < b.Len(); i++ {
		b.Set(i, alpha*x.At(i)+b.At(i))
	}
}

func (b *BlockVector) Combine(alpha float64, x Vector, beta float64) {
	if ox, ok := x.(*BlockVector); ok && sameShape(b, ox) {
		for i, blk := range b.Blocks {
			blk.Combine(alpha, ox.Blocks[i], beta)
		}
		return
	}
	for i := 0; i < b.Len(); i++ {
		b.Set(i, alpha*x.At(i)+beta*b.At(i))
	}
}

func (b *BlockVector) Scale(beta float64) {
	for _, blk := range b.Blocks {
		blk.Scale(beta)
	}
}

func (b *BlockVector) Clone() Vector {
	blocks := make([]Vector, len(b.Blocks))
	for i, blk := range b.Blocks {
		blocks[i] = blk.Clone()
	}
	return &BlockVector{Blocks: blocks}
}

func (b *BlockVector) Flatten(dst []float64) {
	off := 0
	for i := 0; i < b.Len(); i++ {
		dst[off] = b.At(i)
		off++
	}
}

func (b *BlockVector) Unflatten(src []float64) {
	for i, v := range src {
		b.Set(i, v)
	}
}

func sameShape(a, b *BlockVector) bool {
	if len(a.Blocks) != len(b.Blocks) {
		return false
	}
	for i := range a.Blocks {
		if a.Blocks[i].Len() != b.Blocks[i].Len() {
			return false
		}
	}
	return true
}
