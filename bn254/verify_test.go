package groth16

import (
	"math/big"
	"testing"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofcraft/groth16/multicore"
)

// testPipeline is a minimal honest proving pipeline: a random trusted setup
// (α, β, γ, δ, τ_0..τ_k kept as exponents) and proofs derived algebraically
// from the verification equation
//
//	a·b = α·β + (τ_0 + Σ inputs_i·τ_{i+1})·γ + c·δ
//
// by sampling a, b and solving for c. This yields valid (vk, proof, inputs)
// triples without a circuit front-end.
type testPipeline struct {
	vk VerifyingKey

	alpha, beta, gamma, delta fr.Element
	tau                       []fr.Element
}

func newTestPipeline(t *testing.T, nbInputs int) *testPipeline {
	t.Helper()

	p := &testPipeline{
		tau: make([]fr.Element, nbInputs+1),
	}
	p.alpha.MustSetRandom()
	p.beta.MustSetRandom()
	p.gamma.MustSetRandom()
	p.delta.MustSetRandom()

	_, _, g1, g2 := curve.Generators()
	var bi big.Int
	p.vk.AlphaG1.ScalarMultiplication(&g1, p.alpha.BigInt(&bi))
	p.vk.BetaG2.ScalarMultiplication(&g2, p.beta.BigInt(&bi))
	p.vk.GammaG2.ScalarMultiplication(&g2, p.gamma.BigInt(&bi))
	p.vk.DeltaG2.ScalarMultiplication(&g2, p.delta.BigInt(&bi))

	p.vk.Ic = make([]curve.G1Affine, nbInputs+1)
	for i := range p.vk.Ic {
		p.tau[i].MustSetRandom()
		p.vk.Ic[i].ScalarMultiplication(&g1, p.tau[i].BigInt(&bi))
	}

	return p
}

func (p *testPipeline) randomInputs(n int) []fr.Element {
	inputs := make([]fr.Element, n)
	for i := range inputs {
		inputs[i].MustSetRandom()
	}
	return inputs
}

func (p *testPipeline) prove(inputs []fr.Element) *Proof {
	var a, b fr.Element
	a.MustSetRandom()
	b.MustSetRandom()

	// s = τ_0 + Σ inputs_i·τ_{i+1}
	s := p.tau[0]
	var tmp fr.Element
	for i := range inputs {
		tmp.Mul(&inputs[i], &p.tau[i+1])
		s.Add(&s, &tmp)
	}

	// c = (a·b − α·β − s·γ) / δ
	var c, deltaInv fr.Element
	c.Mul(&a, &b)
	tmp.Mul(&p.alpha, &p.beta)
	c.Sub(&c, &tmp)
	tmp.Mul(&s, &p.gamma)
	c.Sub(&c, &tmp)
	deltaInv.Inverse(&p.delta)
	c.Mul(&c, &deltaInv)

	_, _, g1, g2 := curve.Generators()
	var bi big.Int
	var proof Proof
	proof.A.ScalarMultiplication(&g1, a.BigInt(&bi))
	proof.B.ScalarMultiplication(&g2, b.BigInt(&bi))
	proof.C.ScalarMultiplication(&g1, c.BigInt(&bi))
	return &proof
}

func TestVerify(t *testing.T) {
	p := newTestPipeline(t, 3)
	pvk := PrepareVerifyingKey(&p.vk)

	for i := 0; i < 5; i++ {
		inputs := p.randomInputs(3)
		proof := p.prove(inputs)

		ok, err := Verify(pvk, proof, inputs)
		require.NoError(t, err)
		assert.True(t, ok, "honest proof rejected")
	}
}

func TestVerifyNoPublicInputs(t *testing.T) {
	p := newTestPipeline(t, 0)
	pvk := PrepareVerifyingKey(&p.vk)

	ok, err := Verify(pvk, p.prove(nil), nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyTamperedProof(t *testing.T) {
	p := newTestPipeline(t, 2)
	pvk := PrepareVerifyingKey(&p.vk)

	inputs := p.randomInputs(2)
	proof := p.prove(inputs)

	ok, err := Verify(pvk, proof, inputs)
	require.NoError(t, err)
	require.True(t, ok)

	// nudge A off the honest value; the pairing check must fail
	_, _, g1, _ := curve.Generators()
	var tampered Proof = *proof
	tampered.A.Add(&tampered.A, &g1)

	ok, err = Verify(pvk, &tampered, inputs)
	require.NoError(t, err)
	assert.False(t, ok, "tampered proof accepted")

	// tampering with an input must fail too
	badInputs := append([]fr.Element(nil), inputs...)
	var one fr.Element
	one.SetOne()
	badInputs[1].Add(&badInputs[1], &one)

	ok, err = Verify(pvk, proof, badInputs)
	require.NoError(t, err)
	assert.False(t, ok, "proof accepted for wrong inputs")
}

func TestVerifyInputCountMismatch(t *testing.T) {
	p := newTestPipeline(t, 2)
	pvk := PrepareVerifyingKey(&p.vk)

	inputs := p.randomInputs(2)
	proof := p.prove(inputs)

	_, err := Verify(pvk, proof, inputs[:1])
	require.ErrorIs(t, err, ErrMalformedVerifyingKey)

	_, err = Verify(pvk, proof, append(inputs, inputs[0]))
	require.ErrorIs(t, err, ErrMalformedVerifyingKey)
}

func TestPrepareVerifyingKeyDeterministic(t *testing.T) {
	p := newTestPipeline(t, 2)

	pvk1 := PrepareVerifyingKey(&p.vk)
	pvk2 := PrepareVerifyingKey(&p.vk)

	assert.True(t, pvk1.AlphaBeta.Equal(&pvk2.AlphaBeta))
	assert.True(t, pvk1.NegGammaG2.Equal(&pvk2.NegGammaG2))
	assert.True(t, pvk1.NegDeltaG2.Equal(&pvk2.NegDeltaG2))
	assert.True(t, pvk1.GammaG2.Equal(&pvk2.GammaG2))
	assert.True(t, pvk1.DeltaG2.Equal(&pvk2.DeltaG2))
	require.Equal(t, len(pvk1.Ic), len(pvk2.Ic))

	// and both preparations behave identically on the same vectors
	inputs := p.randomInputs(2)
	proof := p.prove(inputs)
	ok1, err := Verify(pvk1, proof, inputs)
	require.NoError(t, err)
	ok2, err := Verify(pvk2, proof, inputs)
	require.NoError(t, err)
	assert.Equal(t, ok1, ok2)
	assert.True(t, ok1)
}

func TestVerifyWorkerWidthIndependent(t *testing.T) {
	p := newTestPipeline(t, 4)
	pvk := PrepareVerifyingKey(&p.vk)

	inputs := p.randomInputs(4)
	proof := p.prove(inputs)

	for _, nbTasks := range []int{1, 2, 7, 32} {
		ok, err := Verify(pvk, proof, inputs, WithWorker(multicore.NewBounded(nbTasks)))
		require.NoError(t, err)
		assert.True(t, ok, "nbTasks=%d", nbTasks)
	}
}

// PreparedVerifyingKey is read-only after construction; hammer it from many
// goroutines to let the race detector vet the sharing contract.
func TestVerifyConcurrentSharedKey(t *testing.T) {
	p := newTestPipeline(t, 2)
	pvk := PrepareVerifyingKey(&p.vk)

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			inputs := p.randomInputs(2)
			ok, err := Verify(pvk, p.prove(inputs), inputs)
			if err == nil && !ok {
				err = assert.AnError
			}
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-done)
	}
}
