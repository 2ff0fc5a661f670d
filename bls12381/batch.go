package groth16

import (
	"fmt"
	"io"
	"math/big"
	"time"

	curve "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/proofcraft/groth16/accelerated"
	"github.com/proofcraft/groth16/logger"
)

// VerifyBatch checks n proofs against the same prepared key with a single
// combined pairing, folding them under random 128-bit coefficients drawn
// from rng (soundness error ~2^-128 per batch). rng must be a
// cryptographically secure source in production, e.g. crypto/rand.Reader.
//
// An empty batch is vacuously accepted: the randomized combination
// degenerates to the trivial identity 1 == 1.
func VerifyBatch(pvk *PreparedVerifyingKey, rng io.Reader, proofs []*Proof, publicInputs [][]fr.Element, opts ...VerifierOption) (bool, error) {
	if len(proofs) != len(publicInputs) {
		return false, ErrMalformedVerifyingKey
	}
	for j := range publicInputs {
		if len(publicInputs[j])+1 != len(pvk.Ic) {
			return false, ErrMalformedVerifyingKey
		}
	}
	if len(proofs) == 0 {
		return true, nil
	}

	cfg, err := newVerifierConfig(opts...)
	if err != nil {
		return false, err
	}

	log := logger.Logger().With().Str("curve", "bls12381").Str("backend", "groth16").Int("proofs", len(proofs)).Logger()
	start := time.Now()

	piNum := len(pvk.Ic) - 1
	proofNum := len(proofs)

	// random coefficients for combining the proofs; 128 bits embedded into
	// the full-width field representation
	r := make([]fr.Element, proofNum)
	var buf [16]byte
	for j := range r {
		if _, err := io.ReadFull(rng, buf[:]); err != nil {
			return false, fmt.Errorf("groth16: sampling batch coefficients: %w", err)
		}
		r[j].SetBytes(buf[:])
	}

	var sumR fr.Element
	for j := range r {
		sumR.Add(&sumR, &r[j])
	}

	// pi_i = Σ_j r_j·input_j[i], reduced per input index across proofs
	piScalars := make([]fr.Element, piNum)
	cfg.worker.Execute(piNum, func(start, end int) {
		var tmp fr.Element
		for i := start; i < end; i++ {
			for j := 0; j < proofNum; j++ {
				tmp.Mul(&r[j], &publicInputs[j][i])
				piScalars[i].Add(&piScalars[i], &tmp)
			}
		}
	})

	// Acc_Gamma = Ic[0]·sum_r + multiexp(Ic[1:], pi)
	accGamma, err := cfg.multiexp(pvk, piScalars)
	if err != nil {
		return false, err
	}
	var bi big.Int
	var icZero curve.G1Affine
	icZero.ScalarMultiplication(&pvk.Ic[0], sumR.BigInt(&bi))
	accGamma.AddMixed(&icZero)

	// Acc_Y = e(α,β)^(−sum_r)
	var negSumR fr.Element
	negSumR.Neg(&sumR)
	var accY curve.GT
	accY.Exp(pvk.AlphaBeta, negSumR.BigInt(&bi))

	// per-proof pairing operands (r_j·A_j, −B_j) and the Acc_Delta terms
	g1Pairs := make([]curve.G1Affine, proofNum+2)
	g2Pairs := make([]curve.G2Affine, proofNum+2)
	deltaTerms := make([]curve.G1Affine, proofNum)
	cfg.worker.Execute(proofNum, func(start, end int) {
		var k big.Int
		for j := start; j < end; j++ {
			r[j].BigInt(&k)
			g1Pairs[j].ScalarMultiplication(&proofs[j].A, &k)
			g2Pairs[j].Neg(&proofs[j].B)
			deltaTerms[j].ScalarMultiplication(&proofs[j].C, &k)
		}
	})

	// Acc_Delta = Σ_j r_j·C_j
	var accDelta curve.G1Jac
	for j := range deltaTerms {
		accDelta.AddMixed(&deltaTerms[j])
	}

	g1Pairs[proofNum].FromJacobian(&accDelta)
	g2Pairs[proofNum] = pvk.DeltaG2
	g1Pairs[proofNum+1].FromJacobian(&accGamma)
	g2Pairs[proofNum+1] = pvk.GammaG2

	// one combined miller loop, one final exponentiation
	ml, err := curve.MillerLoop(g1Pairs, g2Pairs)
	if err != nil {
		return false, err
	}
	res := curve.FinalExponentiation(&ml)

	ok := res.Equal(&accY)
	log.Debug().Dur("took", time.Since(start)).Bool("verified", ok).Msg("batch verifier done")
	return ok, nil
}

// multiexp routes the batch multiexp over Ic[1:] through the device policy:
// auto and cpu use the windowed engine, gpu acquires the exclusively-locked
// hardware kernel for the duration of exactly this call.
func (cfg *verifierConfig) multiexp(pvk *PreparedVerifyingKey, scalars []fr.Element) (curve.G1Jac, error) {
	if len(scalars) == 0 {
		return curve.G1Jac{}, nil
	}
	if cfg.devicePolicy() == accelerated.GPU {
		kern, err := acquireMultiexpKernel(ceilLog2(len(scalars)))
		if err != nil {
			return curve.G1Jac{}, err
		}
		defer kern.Release()
		return kern.MultiExp(pvk.Ic[1:], scalars)
	}
	return parMultiscalar(cfg.worker, pvk.multiscalar.subset(1), scalars, fr.Bytes*8), nil
}
