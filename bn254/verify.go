package groth16

import (
	"errors"
	"time"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/proofcraft/groth16/logger"
)

var (
	// ErrMalformedVerifyingKey is returned when the number of public inputs
	// does not match the verifying key.
	ErrMalformedVerifyingKey = errors.New("groth16: malformed verifying key: wrong number of public inputs")

	// ErrAcceleratorUnavailable is returned when the gpu device policy is set
	// but no multiexp kernel can be acquired. There is no CPU fallback.
	ErrAcceleratorUnavailable = errors.New("groth16: multiexp accelerator unavailable")
)

// VerifyingKey is the public output of the trusted setup, immutable once
// produced.
type VerifyingKey struct {
	AlphaG1 curve.G1Affine
	BetaG2  curve.G2Affine
	GammaG2 curve.G2Affine
	DeltaG2 curve.G2Affine

	// Ic[0] anchors the public-input accumulator; Ic[i+1] pairs with input i.
	Ic []curve.G1Affine
}

// Proof is a prover's claim for one statement.
type Proof struct {
	A curve.G1Affine
	B curve.G2Affine
	C curve.G1Affine
}

// PreparedVerifyingKey caches the expensive one-time derivations of a
// VerifyingKey: e(α,β), the negated γ/δ points and the fixed-window multiexp
// table over Ic. It is read-only after construction and safe to share across
// any number of concurrent verifications.
type PreparedVerifyingKey struct {
	AlphaBeta  curve.GT
	NegGammaG2 curve.G2Affine
	NegDeltaG2 curve.G2Affine
	GammaG2    curve.G2Affine
	DeltaG2    curve.G2Affine
	Ic         []curve.G1Affine

	multiscalar *multiscalarPrecomp
}

// PrepareVerifyingKey derives the prepared form of vk. It is deterministic
// and assumes a well-formed key; do it once per key and reuse the result.
func PrepareVerifyingKey(vk *VerifyingKey) *PreparedVerifyingKey {
	pvk := &PreparedVerifyingKey{
		AlphaBeta: alphaBetaPairing(vk),
		GammaG2:   vk.GammaG2,
		DeltaG2:   vk.DeltaG2,
		Ic:        append([]curve.G1Affine(nil), vk.Ic...),
	}

	// negating γ and δ folds the three verification pairings into a single
	// final exponentiation
	pvk.NegGammaG2.Neg(&vk.GammaG2)
	pvk.NegDeltaG2.Neg(&vk.DeltaG2)

	pvk.multiscalar = precomputeFixedWindow(pvk.Ic, msmWindowSize)

	return pvk
}

func alphaBetaPairing(vk *VerifyingKey) curve.GT {
	e, err := curve.Pair([]curve.G1Affine{vk.AlphaG1}, []curve.G2Affine{vk.BetaG2})
	if err != nil {
		// single pair, lengths match; broken arithmetic contract
		panic(err)
	}
	return e
}

// Verify checks proof against pvk for the given public inputs.
//
// The equation A·B = αβ + inputs·γ + C·δ is checked in the rearranged form
// A·B + inputs·(−γ) + C·(−δ) = αβ: the three miller loops run concurrently
// and share one final exponentiation.
func Verify(pvk *PreparedVerifyingKey, proof *Proof, publicInputs []fr.Element, opts ...VerifierOption) (bool, error) {
	if len(publicInputs)+1 != len(pvk.Ic) {
		return false, ErrMalformedVerifyingKey
	}

	cfg, err := newVerifierConfig(opts...)
	if err != nil {
		return false, err
	}

	log := logger.Logger().With().Str("curve", "bn254").Str("backend", "groth16").Logger()
	start := time.Now()

	var mlAB, mlCDelta curve.GT

	var g errgroup.Group
	g.Go(func() error {
		var err error
		mlAB, err = curve.MillerLoop([]curve.G1Affine{proof.A}, []curve.G2Affine{proof.B})
		return err
	})
	g.Go(func() error {
		var err error
		mlCDelta, err = curve.MillerLoop([]curve.G1Affine{proof.C}, []curve.G2Affine{pvk.NegDeltaG2})
		return err
	})

	// Acc = Ic[0] + Σ publicInputs[i]·Ic[i+1], accumulated on the calling
	// goroutine while the two miller loops above run
	acc := parMultiscalar(cfg.worker, pvk.multiscalar.subset(1), publicInputs, fr.Bytes*8)
	acc.AddMixed(&pvk.Ic[0])
	var accAff curve.G1Affine
	accAff.FromJacobian(&acc)

	mlAcc, err := curve.MillerLoop([]curve.G1Affine{accAff}, []curve.G2Affine{pvk.NegGammaG2})
	if err != nil {
		return false, err
	}

	if err := g.Wait(); err != nil {
		return false, err
	}

	mlAcc.Mul(&mlAcc, &mlAB).Mul(&mlAcc, &mlCDelta)
	res := curve.FinalExponentiation(&mlAcc)

	ok := res.Equal(&pvk.AlphaBeta)
	log.Debug().Dur("took", time.Since(start)).Bool("verified", ok).Msg("verifier done")
	return ok, nil
}
