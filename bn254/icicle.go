//go:build icicle

package groth16

import (
	"fmt"
	"sync"
	"unsafe"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	icicle_core "github.com/ingonyama-zk/icicle-gnark/v3/wrappers/golang/core"
	icicle_bn254 "github.com/ingonyama-zk/icicle-gnark/v3/wrappers/golang/curves/bn254"
	icicle_msm "github.com/ingonyama-zk/icicle-gnark/v3/wrappers/golang/curves/bn254/msm"
	icicle_runtime "github.com/ingonyama-zk/icicle-gnark/v3/wrappers/golang/runtime"

	"github.com/proofcraft/groth16/logger"
)

// HasIcicle signals whether this build carries the ICICLE accelerator backend.
const HasIcicle = true

var (
	onceWarmUpDevice sync.Once
	device           icicle_runtime.Device

	// one multiexp kernel at a time per device
	deviceLock sync.Mutex
)

func warmUpDevice() {
	onceWarmUpDevice.Do(func() {
		log := logger.Logger()
		err := icicle_runtime.LoadBackendFromEnvOrDefault()
		if err != icicle_runtime.Success {
			panic(fmt.Sprintf("ICICLE backend loading error: %s", err.AsString()))
		}
		device = icicle_runtime.CreateDevice("CUDA", 0)
		log.Debug().Int32("id", device.Id).Str("type", device.GetDeviceType()).Msg("ICICLE device created")
		icicle_runtime.RunOnDevice(&device, func(args ...any) {
			err := icicle_runtime.WarmUpDevice()
			if err != icicle_runtime.Success {
				panic(fmt.Sprintf("ICICLE device warmup error: %s", err.AsString()))
			}
		})
	})
}

type icicleKernel struct {
	logD int
}

// acquireMultiexpKernel takes exclusive ownership of the device for one
// multiexp of ~2^logD points. Blocks until the device is free.
func acquireMultiexpKernel(logD int) (multiexpKernel, error) {
	warmUpDevice()
	deviceLock.Lock()
	return &icicleKernel{logD: logD}, nil
}

func (k *icicleKernel) Release() {
	deviceLock.Unlock()
}

func (k *icicleKernel) MultiExp(points []curve.G1Affine, scalars []fr.Element) (curve.G1Jac, error) {
	var res curve.G1Jac
	if len(points) != len(scalars) {
		return res, fmt.Errorf("groth16: multiexp: %d points, %d scalars", len(points), len(scalars))
	}

	// gnark-crypto and ICICLE agree on the in-memory limb layout; the
	// Montgomery flags below tell the kernel how to interpret it
	scalarsHost := (icicle_core.HostSlice[icicle_bn254.ScalarField])(unsafe.Slice((*icicle_bn254.ScalarField)(unsafe.Pointer(&scalars[0])), len(scalars)))
	pointsHost := (icicle_core.HostSlice[icicle_bn254.Affine])(unsafe.Slice((*icicle_bn254.Affine)(unsafe.Pointer(&points[0])), len(points)))

	cfg := icicle_core.GetDefaultMSMConfig()
	cfg.IsAsync = false
	cfg.ArePointsMontgomeryForm = true
	cfg.AreScalarsMontgomeryForm = true

	out := make(icicle_core.HostSlice[icicle_bn254.Projective], 1)
	done := make(chan icicle_runtime.EIcicleError, 1)
	icicle_runtime.RunOnDevice(&device, func(args ...any) {
		done <- icicle_msm.Msm(scalarsHost, pointsHost, &cfg, out)
	})
	if err := <-done; err != icicle_runtime.Success {
		return res, fmt.Errorf("groth16: icicle msm (logD=%d): %s", k.logD, err.AsString())
	}

	res.FromAffine(projectiveToGnarkAffine(&out[0]))
	return res, nil
}

func projectiveToGnarkAffine(p *icicle_bn254.Projective) *curve.G1Affine {
	px := *(*fp.Element)(unsafe.Pointer(&p.X))
	py := *(*fp.Element)(unsafe.Pointer(&p.Y))
	pz := *(*fp.Element)(unsafe.Pointer(&p.Z))

	var aff curve.G1Affine
	if pz.IsZero() {
		return &aff
	}
	var zInv fp.Element
	zInv.Inverse(&pz)
	aff.X.Mul(&px, &zInv)
	aff.Y.Mul(&py, &zInv)
	return &aff
}
