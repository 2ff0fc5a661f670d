//go:build !icicle

package groth16

// HasIcicle signals whether this build carries the ICICLE accelerator backend.
const HasIcicle = false

func acquireMultiexpKernel(logD int) (multiexpKernel, error) {
	return nil, ErrAcceleratorUnavailable
}
