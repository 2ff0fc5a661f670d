package groth16

import (
	"io"

	curve "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// WriteTo writes the verifying key in the curve's canonical compressed point
// encoding.
func (vk *VerifyingKey) WriteTo(w io.Writer) (int64, error) {
	enc := curve.NewEncoder(w)
	toEncode := []interface{}{
		&vk.AlphaG1,
		&vk.BetaG2,
		&vk.GammaG2,
		&vk.DeltaG2,
		vk.Ic,
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return enc.BytesWritten(), err
		}
	}
	return enc.BytesWritten(), nil
}

// ReadFrom reads a verifying key written by WriteTo, checking that points are
// on the curve and in the correct subgroup.
func (vk *VerifyingKey) ReadFrom(r io.Reader) (int64, error) {
	dec := curve.NewDecoder(r)
	toDecode := []interface{}{
		&vk.AlphaG1,
		&vk.BetaG2,
		&vk.GammaG2,
		&vk.DeltaG2,
		&vk.Ic,
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return dec.BytesRead(), err
		}
	}
	return dec.BytesRead(), nil
}

// WriteTo writes the proof in the curve's canonical compressed point encoding.
func (proof *Proof) WriteTo(w io.Writer) (int64, error) {
	enc := curve.NewEncoder(w)
	toEncode := []interface{}{
		&proof.A,
		&proof.B,
		&proof.C,
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return enc.BytesWritten(), err
		}
	}
	return enc.BytesWritten(), nil
}

// ReadFrom reads a proof written by WriteTo.
func (proof *Proof) ReadFrom(r io.Reader) (int64, error) {
	dec := curve.NewDecoder(r)
	toDecode := []interface{}{
		&proof.A,
		&proof.B,
		&proof.C,
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return dec.BytesRead(), err
		}
	}
	return dec.BytesRead(), nil
}
