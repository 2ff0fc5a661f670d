package groth16

import (
	curve "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/proofcraft/groth16/multicore"
)

// msmWindowSize is the fixed precomputation window width in bits. A width of
// 8 stores 255 multiples per base point and costs one table add per scanned
// window.
const msmWindowSize = 8

// multiscalarPrecomp holds, for every base point, its multiples
// [1]P .. [2^w-1]P for the window width w. Built once per verifying key.
type multiscalarPrecomp struct {
	windowSize int
	tables     [][]curve.G1Affine
}

func precomputeFixedWindow(points []curve.G1Affine, windowSize int) *multiscalarPrecomp {
	t := &multiscalarPrecomp{
		windowSize: windowSize,
		tables:     make([][]curve.G1Affine, len(points)),
	}
	nbEntries := (1 << windowSize) - 1
	for i := range points {
		row := make([]curve.G1Jac, nbEntries)
		var acc curve.G1Jac
		acc.FromAffine(&points[i])
		row[0] = acc
		for j := 1; j < nbEntries; j++ {
			acc.AddMixed(&points[i])
			row[j] = acc
		}
		t.tables[i] = curve.BatchJacobianToAffineG1(row)
	}
	return t
}

// subset returns a view over the tables starting at base index from.
func (t *multiscalarPrecomp) subset(from int) *multiscalarPrecomp {
	return &multiscalarPrecomp{
		windowSize: t.windowSize,
		tables:     t.tables[from:],
	}
}

// parMultiscalar computes Σ scalars[i]·bases[i] over the precomputed tables,
// scanning nbBits of each scalar.
//
// The window range is cut into contiguous chunks distributed over the worker;
// each task scans its windows of every scalar into a private projective
// accumulator, then the partial sums are folded most-significant-chunk-first
// with doublings in between. Chunk boundaries depend only on the worker
// width through the number of chunks, and the fold is exact, so any width
// yields the same group element.
func parMultiscalar(w *multicore.Worker, t *multiscalarPrecomp, scalars []fr.Element, nbBits int) curve.G1Jac {
	var res curve.G1Jac
	if len(scalars) == 0 {
		return res
	}

	// canonical fixed-width representation for bitwise scanning
	repr := make([][fr.Limbs]uint64, len(scalars))
	for i := range scalars {
		repr[i] = scalars[i].Bits()
	}

	nbWindows := (nbBits + t.windowSize - 1) / t.windowSize
	nbChunks := w.NbTasks()
	if nbChunks > nbWindows {
		nbChunks = nbWindows
	}

	// contiguous window ranges, low chunks first
	bounds := make([][2]int, nbChunks)
	windowsPerChunk := nbWindows / nbChunks
	extra := nbWindows % nbChunks
	offset := 0
	for c := range bounds {
		end := offset + windowsPerChunk
		if c < extra {
			end++
		}
		bounds[c] = [2]int{offset, end}
		offset = end
	}

	partials := make([]curve.G1Jac, nbChunks)
	w.Execute(nbChunks, func(start, end int) {
		for c := start; c < end; c++ {
			partials[c] = t.chunkSum(repr, bounds[c][0], bounds[c][1])
		}
	})

	for c := nbChunks - 1; c >= 0; c-- {
		if c != nbChunks-1 {
			nb := (bounds[c][1] - bounds[c][0]) * t.windowSize
			for b := 0; b < nb; b++ {
				res.DoubleAssign()
			}
		}
		res.AddAssign(&partials[c])
	}

	return res
}

// chunkSum scans windows [wStart, wEnd) of every scalar, most significant
// first, entirely in projective coordinates.
func (t *multiscalarPrecomp) chunkSum(repr [][fr.Limbs]uint64, wStart, wEnd int) curve.G1Jac {
	var acc curve.G1Jac
	for wi := wEnd - 1; wi >= wStart; wi-- {
		if wi != wEnd-1 {
			for b := 0; b < t.windowSize; b++ {
				acc.DoubleAssign()
			}
		}
		for j := range repr {
			if d := windowDigit(&repr[j], wi*t.windowSize, t.windowSize); d != 0 {
				acc.AddMixed(&t.tables[j][d-1])
			}
		}
	}
	return acc
}

// windowDigit extracts width bits of the little-endian limb representation
// starting at bitOffset, handling limb-boundary straddles.
func windowDigit(limbs *[fr.Limbs]uint64, bitOffset, width int) uint64 {
	limb := bitOffset >> 6
	if limb >= fr.Limbs {
		return 0
	}
	shift := uint(bitOffset & 63)
	d := limbs[limb] >> shift
	if int(shift)+width > 64 && limb+1 < fr.Limbs {
		d |= limbs[limb+1] << (64 - shift)
	}
	return d & (1<<uint(width) - 1)
}

// multiexpKernel is the acquisition contract of a hardware multiexp
// accelerator: acquired under mutual exclusion, used for exactly one call,
// then released.
type multiexpKernel interface {
	MultiExp(points []curve.G1Affine, scalars []fr.Element) (curve.G1Jac, error)
	Release()
}
