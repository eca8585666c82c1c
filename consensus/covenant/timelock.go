// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package covenant

// TimelockData is the parsed covenant_data for a Timelock output: an
// absolute height or timestamp lock with no key requirement.
type TimelockData struct {
	LockMode  uint8
	LockValue uint64
}

// ParseTimelock decodes lock_mode:u8 || lock_value:u64.
func ParseTimelock(data []byte) (TimelockData, error) {
	if len(data) != 1+8 {
		return TimelockData{}, ErrBadCovenantData
	}
	return TimelockData{
		LockMode:  data[0],
		LockValue: leU64(data[1:9]),
	}, nil
}

func checkTimelockSpend(data []byte, ctx SpendContext) error {
	tl, err := ParseTimelock(data)
	if err != nil {
		return err
	}
	if len(ctx.Witness) != 1 || !isSentinelWitness(ctx.Witness[0]) {
		return ErrWitnessMismatch
	}
	ok, err := ctx.Lock.Satisfied(tl.LockMode, tl.LockValue)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTimelockNotMet
	}
	return nil
}

// leU64 decodes a little-endian uint64 from an 8-byte slice.
func leU64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// leU16 decodes a little-endian uint16 from a 2-byte slice.
func leU16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}
