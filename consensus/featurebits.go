// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import "github.com/jrick/bitset"

// DeploymentState is a position in the coarse feature-bit deployment state
// machine (spec.md section 6), modelled on BIP9 with the teacher's own
// vote-bits/threshold idiom (blockchain's ThresholdState) generalized from
// stake-vote counting to plain block-header signal bits.
type DeploymentState int

const (
	DeploymentDefined DeploymentState = iota
	DeploymentStarted
	DeploymentLockedIn
	DeploymentActive
	DeploymentFailed
)

func (s DeploymentState) String() string {
	switch s {
	case DeploymentDefined:
		return "defined"
	case DeploymentStarted:
		return "started"
	case DeploymentLockedIn:
		return "locked-in"
	case DeploymentActive:
		return "active"
	case DeploymentFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Deployment describes one feature-bit signal per spec.md section 6.
type Deployment struct {
	Name          string
	Bit           uint8
	StartHeight   uint64
	TimeoutHeight uint64
}

// WindowSignalBits packs the signal bit for each header in a SignalWindow
// window into a bitset.Bitset, one bit per block, so a deployment's signal
// count over the window is a scan of the bitset (countSignals) instead of
// a header-by-header decode each time a state transition is evaluated.
func WindowSignalBits(headers []BlockHeader, bit uint8) bitset.Bitset {
	bs := bitset.New(len(headers))
	for i, h := range headers {
		if h.Version&(1<<bit) != 0 {
			bs.Set(i)
		}
	}
	return bs
}

// countSignals returns the number of set bits in bs, i.e. the number of
// headers in the window that signalled readiness for the deployment.
func countSignals(bs bitset.Bitset, n int) int {
	count := 0
	for i := 0; i < n; i++ {
		if bs.Get(i) {
			count++
		}
	}
	return count
}

// NextDeploymentState advances a deployment's state by one SIGNAL_WINDOW
// boundary, given the previous state, the just-completed window's signal
// bitset, the window's length, and the height of the boundary being
// evaluated.
func NextDeploymentState(prev DeploymentState, d Deployment, heightAtBoundary uint64, windowSignals bitset.Bitset, windowLen int) DeploymentState {
	switch prev {
	case DeploymentDefined:
		if heightAtBoundary >= d.StartHeight {
			return DeploymentStarted
		}
		return DeploymentDefined
	case DeploymentStarted:
		if countSignals(windowSignals, windowLen) >= SignalThreshold {
			return DeploymentLockedIn
		}
		if heightAtBoundary >= d.TimeoutHeight {
			return DeploymentFailed
		}
		return DeploymentStarted
	case DeploymentLockedIn:
		return DeploymentActive
	case DeploymentActive, DeploymentFailed:
		return prev
	default:
		return prev
	}
}
