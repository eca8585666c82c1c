// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"math/big"

	"github.com/rubinprotocol/rubind/chainhash"
)

// PowLimit is the maximum permitted target: 2^256 - 1. Grounded on the
// teacher's compact-target big.Int style in blockchain/difficulty.go,
// generalized from Equihash's N/K compact representation to a plain
// 256-bit target.
var PowLimit = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// hashToBig interprets a 32-byte hash as a big-endian unsigned integer.
func hashToBig(h chainhash.Hash) *big.Int {
	return new(big.Int).SetBytes(h[:])
}

// targetToBig interprets a 32-byte target as a big-endian unsigned integer.
func targetToBig(target [32]byte) *big.Int {
	return new(big.Int).SetBytes(target[:])
}

// bigToTarget renders x as a 32-byte big-endian target, truncating any
// overflow above 2^256-1. Callers are expected to have already clamped x
// to PowLimit.
func bigToTarget(x *big.Int) [32]byte {
	var out [32]byte
	b := x.Bytes()
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	copy(out[32-len(b):], b)
	return out
}

// CheckProofOfWork reports whether blockHash < target (strict), per
// spec.md section 4.6. A hash equal to the target fails.
func CheckProofOfWork(blockHash chainhash.Hash, target [32]byte) bool {
	return hashToBig(blockHash).Cmp(targetToBig(target)) < 0
}

// BlockWork returns floor(2^256 / target), the chainwork contributed by a
// block solved at target. Computed at full precision; callers saturate
// for storage as described in spec.md section 3.
func BlockWork(target [32]byte) *big.Int {
	t := targetToBig(target)
	if t.Sign() == 0 {
		// A zero target would imply infinite work; divide by 1, the
		// smallest nonzero denominator, giving the largest finite work.
		t = big.NewInt(1)
	}
	numerator := new(big.Int).Lsh(big.NewInt(1), 256)
	return new(big.Int).Div(numerator, t)
}

// MaxCumulativeWork is the saturating storage ceiling for cumulative
// chainwork (u128::MAX in the spec's arbitrary-precision note).
var MaxCumulativeWork = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// SaturatingAddWork adds work to cumulative, saturating at MaxCumulativeWork.
func SaturatingAddWork(cumulative, work *big.Int) *big.Int {
	sum := new(big.Int).Add(cumulative, work)
	if sum.Cmp(MaxCumulativeWork) > 0 {
		return new(big.Int).Set(MaxCumulativeWork)
	}
	return sum
}

// RetargetV1 computes the next target given the old target and the first
// and last timestamps observed over the just-completed retarget window,
// per spec.md section 4.6's clamp formula.
func RetargetV1(oldTarget [32]byte, tsFirst, tsLast uint64) [32]byte {
	old := targetToBig(oldTarget)

	tActual := int64(0)
	if tsLast > tsFirst {
		tActual = int64(tsLast - tsFirst)
	}
	if tActual < 1 {
		tActual = 1
	}
	tExpected := int64(TargetBlockIntervalSeconds * RetargetWindow)

	newTarget := new(big.Int).Mul(old, big.NewInt(tActual))
	newTarget.Div(newTarget, big.NewInt(tExpected))

	minAllowed := new(big.Int).Rsh(old, 2) // floor(old/4)
	if minAllowed.Sign() < 1 {
		minAllowed = big.NewInt(1)
	}
	maxAllowed := new(big.Int).Lsh(old, 2) // old*4, saturating at PowLimit
	if maxAllowed.Cmp(PowLimit) > 0 {
		maxAllowed = new(big.Int).Set(PowLimit)
	}

	if newTarget.Cmp(minAllowed) < 0 {
		newTarget = minAllowed
	}
	if newTarget.Cmp(maxAllowed) > 0 {
		newTarget = maxAllowed
	}
	if newTarget.Cmp(PowLimit) > 0 {
		newTarget = PowLimit
	}
	return bigToTarget(newTarget)
}
