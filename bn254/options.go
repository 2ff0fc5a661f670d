package groth16

import (
	"errors"
	"math/bits"

	"github.com/proofcraft/groth16/accelerated"
	"github.com/proofcraft/groth16/multicore"
)

// VerifierOption configures a single verification call.
type VerifierOption func(*verifierConfig) error

// WithWorker runs the call's data-parallel phases on w instead of the shared
// process-wide pool. Mainly used by tests to pin a deterministic pool width.
func WithWorker(w *multicore.Worker) VerifierOption {
	return func(cfg *verifierConfig) error {
		if w == nil {
			return errors.New("groth16: nil worker")
		}
		cfg.worker = w
		return nil
	}
}

// WithDevice overrides the process-wide device policy for this call.
func WithDevice(p accelerated.Policy) VerifierOption {
	return func(cfg *verifierConfig) error {
		cfg.device = &p
		return nil
	}
}

type verifierConfig struct {
	worker *multicore.Worker
	device *accelerated.Policy
}

func newVerifierConfig(opts ...VerifierOption) (*verifierConfig, error) {
	cfg := &verifierConfig{
		worker: multicore.Default(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// devicePolicy resolves the multiexp device, deferring to the process-wide
// switch unless overridden. Only the batch path consults it.
func (cfg *verifierConfig) devicePolicy() accelerated.Policy {
	if cfg.device != nil {
		return *cfg.device
	}
	return accelerated.VerifierPolicy()
}

func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}
