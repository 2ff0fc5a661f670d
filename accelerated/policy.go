// Package accelerated holds the device policy for the batch verifier's
// multi-scalar multiplication: run on the CPU engine or offload to a hardware
// kernel.
//
// The policy is a single process-level switch, read once from the
// GROTH16_VERIFIER environment variable. Recognized values (case-insensitive)
// are "auto", "cpu" and "gpu"; anything else is a deployment bug and aborts
// the process rather than being recovered per call.
package accelerated

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/proofcraft/groth16/logger"
)

// EnvVar is the environment variable holding the device policy.
const EnvVar = "GROTH16_VERIFIER"

// Policy selects the multiexp execution device.
type Policy uint8

const (
	// Auto lets the engine decide; currently identical to CPU.
	Auto Policy = iota
	// CPU always uses the windowed multiscalar engine on general-purpose cores.
	CPU
	// GPU acquires an exclusively-locked hardware multiexp kernel per call.
	GPU
)

func (p Policy) String() string {
	switch p {
	case Auto:
		return "auto"
	case CPU:
		return "cpu"
	case GPU:
		return "gpu"
	default:
		return "unknown"
	}
}

// PolicyFromString parses a policy value. The empty string maps to Auto.
func PolicyFromString(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return Auto, nil
	case "cpu":
		return CPU, nil
	case "gpu":
		return GPU, nil
	default:
		return Auto, fmt.Errorf("invalid verifier device selected: %q", s)
	}
}

// MustPolicyFromString parses a policy value and treats failure as a fatal
// configuration error: it aborts regardless of logger configuration.
func MustPolicyFromString(s string) Policy {
	p, err := PolicyFromString(s)
	if err != nil {
		log := logger.Logger()
		log.Error().Err(err).Str("value", s).Msg("fatal verifier device policy")
		panic(err)
	}
	return p
}

var (
	oncePolicy sync.Once
	envPolicy  Policy
)

// VerifierPolicy returns the process-wide device policy, reading EnvVar on
// first use. An unrecognized value aborts.
func VerifierPolicy() Policy {
	oncePolicy.Do(func() {
		envPolicy = MustPolicyFromString(os.Getenv(EnvVar))
	})
	return envPolicy
}
