// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg describes a chain instance: its genesis bytes, its
// feature-bit deployment catalogue, and network metadata carried for
// parity with the teacher's chaincfg.Params but never read by the
// consensus package. Unlike the teacher's hard-coded per-network files
// (mainnetparams.go, testnetparams.go, ...), a Profile here can also be
// parsed from an ASCII/markdown document, per SPEC_FULL.md's ambient
// chain-instance-profile format.
package chaincfg

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rubinprotocol/rubind/chainhash"
	"github.com/rubinprotocol/rubind/consensus"
)

// Deployment mirrors consensus.Deployment; declared again here because a
// Profile is config data the consensus package never imports back.
type Deployment struct {
	Name          string
	Bit           uint8
	StartHeight   uint64
	TimeoutHeight uint64
}

// Profile describes one chain instance.
type Profile struct {
	Name        string
	DefaultPort string
	DNSSeeds    []string

	GenesisHeaderBytes []byte
	GenesisTxBytes     []byte

	Deployments []Deployment

	// ExtensionActivationHeight is the height at which the Extension
	// covenant's allow-listed suites become enforceable; before it,
	// every Extension spend must use the keyless sentinel witness.
	ExtensionActivationHeight uint64
	ExtensionAllowedSuites    []uint8
}

// ChainID derives the 32-byte chain identifier from the profile's genesis
// bytes, per spec.md section 6:
//
//	chain_id = SHA3_256("RUBIN-GENESIS-v1" || genesis_header_bytes ||
//	           CompactSize(1) || genesis_tx_bytes)
func (p *Profile) ChainID(hashFn chainhash.HashFunc) chainhash.Hash {
	buf := make([]byte, 0, len(consensus.GenesisTag)+len(p.GenesisHeaderBytes)+1+len(p.GenesisTxBytes))
	buf = append(buf, []byte(consensus.GenesisTag)...)
	buf = append(buf, p.GenesisHeaderBytes...)
	buf = append(buf, 0x01) // CompactSize(1): a single genesis transaction
	buf = append(buf, p.GenesisTxBytes...)
	return hashFn(buf)
}

// ActiveExtensionSuites returns the allow-list to use for Extension
// covenant spends at height, or nil before activation.
func (p *Profile) ActiveExtensionSuites(height uint64) map[uint8]bool {
	if height < p.ExtensionActivationHeight {
		return nil
	}
	allowed := make(map[uint8]bool, len(p.ExtensionAllowedSuites))
	for _, s := range p.ExtensionAllowedSuites {
		allowed[s] = true
	}
	return allowed
}

// ParseProfile reads a chain instance profile from its markdown
// description. The format is a flat list of `- key: value` bullets; hex
// fields decode as lower/upper-case hex, lists are comma-separated, and
// deployments are given one per line as
// `- deployment: name=<n>,bit=<b>,start=<h>,timeout=<h>`.
func ParseProfile(r io.Reader) (*Profile, error) {
	p := &Profile{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "-") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "-"))
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "name":
			p.Name = value
		case "default_port":
			p.DefaultPort = value
		case "dns_seeds":
			p.DNSSeeds = splitCSV(value)
		case "genesis_header":
			b, err := hex.DecodeString(value)
			if err != nil {
				return nil, fmt.Errorf("chaincfg: bad genesis_header hex: %w", err)
			}
			p.GenesisHeaderBytes = b
		case "genesis_tx":
			b, err := hex.DecodeString(value)
			if err != nil {
				return nil, fmt.Errorf("chaincfg: bad genesis_tx hex: %w", err)
			}
			p.GenesisTxBytes = b
		case "extension_activation_height":
			h, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("chaincfg: bad extension_activation_height: %w", err)
			}
			p.ExtensionActivationHeight = h
		case "extension_allowed_suites":
			for _, s := range splitCSV(value) {
				n, err := strconv.ParseUint(s, 10, 8)
				if err != nil {
					return nil, fmt.Errorf("chaincfg: bad extension_allowed_suites entry: %w", err)
				}
				p.ExtensionAllowedSuites = append(p.ExtensionAllowedSuites, uint8(n))
			}
		case "deployment":
			d, err := parseDeployment(value)
			if err != nil {
				return nil, err
			}
			p.Deployments = append(p.Deployments, d)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func parseDeployment(value string) (Deployment, error) {
	var d Deployment
	for _, field := range splitCSV(value) {
		k, v, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		switch k {
		case "name":
			d.Name = v
		case "bit":
			n, err := strconv.ParseUint(v, 10, 8)
			if err != nil {
				return Deployment{}, fmt.Errorf("chaincfg: bad deployment bit: %w", err)
			}
			d.Bit = uint8(n)
		case "start":
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return Deployment{}, fmt.Errorf("chaincfg: bad deployment start: %w", err)
			}
			d.StartHeight = n
		case "timeout":
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return Deployment{}, fmt.Errorf("chaincfg: bad deployment timeout: %w", err)
			}
			d.TimeoutHeight = n
		}
	}
	return d, nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
