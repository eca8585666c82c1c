// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "errors"

// Parse-time errors returned by the reader and the typed decoders. These
// are wrapped by the callers in consensus/ into the tagged error kinds from
// the error taxonomy; the wire package itself stays free of consensus
// semantics.
var (
	// ErrShortRead is returned whenever a fixed-width or length-prefixed
	// read runs past the end of the supplied buffer.
	ErrShortRead = errors.New("wire: short read")

	// ErrNonMinimalCompactSize is returned when a CompactSize prefix
	// uses a wider encoding than the value requires.
	ErrNonMinimalCompactSize = errors.New("wire: non-minimal compactsize encoding")

	// ErrTrailingBytes is returned by typed decoders when the declared
	// extent of the input is not fully consumed.
	ErrTrailingBytes = errors.New("wire: trailing bytes after decode")

	// ErrCompactSizeTooLarge is returned when a decoded CompactSize value
	// exceeds what the caller declared as an acceptable maximum length.
	ErrCompactSizeTooLarge = errors.New("wire: compactsize exceeds bound")
)
