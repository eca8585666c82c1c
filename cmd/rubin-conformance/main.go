// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command rubin-conformance is the dedicated conformance-vector binary:
// it wires the default software capabilities straight to
// conformance.Run against stdin/stdout, with none of rubind's storage or
// profile machinery, so a conformance test harness can run it without
// ever touching a datadir.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/rubinprotocol/rubind/chainhash"
	"github.com/rubinprotocol/rubind/conformance"
	"github.com/rubinprotocol/rubind/consensus"
	"github.com/rubinprotocol/rubind/sigverify"
)

func main() {
	sigCache, err := sigverify.NewCache(sigverify.DefaultCacheMaxEntries)
	if err != nil {
		fmt.Fprintln(os.Stderr, "rubin-conformance:", err)
		os.Exit(1)
	}
	caps := consensus.Capabilities{
		Hash:   chainhash.SoftwareSHA3,
		Verify: sigverify.AsCovenantVerifyFunc(sigverify.Cached{Verifier: sigverify.NewSoftware(), Cache: sigCache}),
	}

	if err := conformance.Run(bufio.NewReader(os.Stdin), os.Stdout, caps); err != nil {
		fmt.Fprintln(os.Stderr, "rubin-conformance:", err)
		os.Exit(1)
	}
}
