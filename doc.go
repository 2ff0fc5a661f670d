// Package groth16 provides a Groth16 zk-SNARK verification engine: prepared
// verifying keys, single-proof verification and randomized batch verification,
// with an optional hardware-accelerated multi-scalar multiplication path.
//
// The engine is instantiated per curve at build time, one package per curve:
//   - github.com/proofcraft/groth16/bn254
//   - github.com/proofcraft/groth16/bls12381
//
// Field and group arithmetic, pairings and canonical encodings come from
// github.com/consensys/gnark-crypto; proving and trusted setup are out of
// scope and expected to happen elsewhere.
package groth16

import (
	"github.com/consensys/gnark-crypto/ecc"
)

// Curves returns the curves the verification engine is instantiated for.
func Curves() []ecc.ID {
	return []ecc.ID{
		ecc.BN254,
		ecc.BLS12_381,
	}
}
