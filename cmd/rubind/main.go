// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command rubind is the process entrypoint around the rubind consensus
// core: it opens (or creates) a leveldb-backed chain store for a chain
// instance profile and either imports one block onto the current tip or
// runs the stdin/stdout conformance surface, mirroring the way the
// teacher's own daemon binary wraps blockchain.BlockChain behind a thin
// flag-parsing main.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rubinprotocol/rubind/chaincfg"
	"github.com/rubinprotocol/rubind/chainhash"
	"github.com/rubinprotocol/rubind/conformance"
	"github.com/rubinprotocol/rubind/consensus"
	"github.com/rubinprotocol/rubind/internal/rlog"
	"github.com/rubinprotocol/rubind/sigverify"
	"github.com/rubinprotocol/rubind/store/leveldb"
	"github.com/rubinprotocol/rubind/store/reorg"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "rubind:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := parseConfig()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return fmt.Errorf("rubind: failed to create datadir: %w", err)
	}
	if err := rlog.InitLogRotator(filepath.Join(cfg.DataDir, defaultLogFilename)); err != nil {
		return err
	}
	if err := rlog.ParseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return err
	}

	sigCache, err := sigverify.NewCache(sigverify.DefaultCacheMaxEntries)
	if err != nil {
		return fmt.Errorf("rubind: failed to init signature cache: %w", err)
	}
	caps := consensus.Capabilities{
		Hash:   chainhash.SoftwareSHA3,
		Verify: sigverify.AsCovenantVerifyFunc(sigverify.Cached{Verifier: sigverify.NewSoftware(), Cache: sigCache}),
	}

	if cfg.Conformance {
		return conformance.Run(bufio.NewReader(os.Stdin), os.Stdout, caps)
	}

	profile, err := loadProfile(cfg.Profile)
	if err != nil {
		return err
	}

	db, err := leveldb.Open(filepath.Join(cfg.DataDir, "chain"))
	if err != nil {
		return fmt.Errorf("rubind: failed to open chain store: %w", err)
	}
	defer db.Close()

	chainID := profile.ChainID(caps.Hash)
	params := reorg.ChainParams{ChainID: chainID, Caps: caps}

	if cfg.ImportBlock != "" {
		return importBlock(db, profile, params, cfg.ImportBlock)
	}

	rlog.NodeLog.Infof("rubind ready, profile=%s chain_id=%s datadir=%s", profile.Name, chainID, cfg.DataDir)
	rlog.NodeLog.Info("no action requested; pass --import-block or --conformance")
	return nil
}

// loadProfile resolves name to a chain instance profile: one of the
// three built-in presets, or a path to a profile document parsed per
// chaincfg.ParseProfile's bulleted format.
func loadProfile(name string) (*chaincfg.Profile, error) {
	switch name {
	case "mainnet", "":
		return chaincfg.MainNetProfile(), nil
	case "testnet":
		return chaincfg.TestNetProfile(), nil
	case "simnet":
		return chaincfg.SimNetProfile(), nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("rubind: unknown profile %q and failed to open it as a file: %w", name, err)
	}
	defer f.Close()
	return chaincfg.ParseProfile(f)
}

// importBlock reads one raw block from path and appends it to the
// store's current tip via reorg.AcceptBlock. It does not attempt to
// reconcile side branches; reorg requires the caller to already hold
// every block of a competing branch, which a single-file import by
// definition does not.
func importBlock(db *leveldb.DB, profile *chaincfg.Profile, params reorg.ChainParams, path string) error {
	blockBytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("rubind: failed to read block file: %w", err)
	}
	b, err := consensus.ParseBlock(blockBytes)
	if err != nil {
		return fmt.Errorf("rubind: failed to parse block: %w", err)
	}

	manifest, err := db.GetManifest()
	if err != nil {
		return err
	}
	activeSuites := profile.ActiveExtensionSuites(manifest.Height + 1)

	index, err := reorg.AcceptBlock(db, params, activeSuites, b, blockBytes, uint64(time.Now().Unix()))
	if err != nil {
		return fmt.Errorf("rubind: block rejected: %w", err)
	}
	rlog.NodeLog.Infof("accepted block %s at height %d", index.Hash, index.Height)
	return nil
}
