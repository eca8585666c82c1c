// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/jessevdk/go-flags"
)

const defaultLogFilename = "rubind.log"

// defaultDataDir mirrors the teacher's AppDataDir convention without
// pulling in its dcrutil helper: a dotted directory under the user's
// home, falling back to the working directory if it cannot be found.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".rubind")
}

type config struct {
	Profile     string `long:"profile" description:"Chain instance profile: mainnet, testnet, simnet, or a path to a profile document" default:"mainnet"`
	DataDir     string `long:"datadir" description:"Directory holding the block and UTXO store"`
	ImportBlock string `long:"import-block" description:"Path to a single raw block to validate and append to the chain, then exit"`
	Conformance bool   `long:"conformance" description:"Run the stdin/stdout JSON conformance surface and exit"`
	DebugLevel  string `long:"debuglevel" description:"Logging level, or a comma-separated list of SUBSYSTEM=level pairs" default:"info"`
}

func parseConfig() (*config, error) {
	cfg := &config{DataDir: defaultDataDir()}
	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	if cfg.Conformance && cfg.ImportBlock != "" {
		return nil, errors.New("--conformance and --import-block are mutually exclusive")
	}
	return cfg, nil
}
