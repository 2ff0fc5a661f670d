// Package groth16 implements Groth16 proof verification over the BN254 curve:
// verifying-key preparation, single-proof verification and randomized batch
// verification with one combined pairing check.
package groth16
