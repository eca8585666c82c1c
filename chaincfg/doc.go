// Package chaincfg defines chain instance profiles: the genesis header
// and coinbase bytes, the feature-bit deployment catalogue, and network
// metadata a node or conformance harness needs to derive a chain_id and
// validate against the right starting point.
//
// Unlike a typical multi-network fork of the same rules, every Profile
// here shares one consensus engine; the presets differ only in genesis
// bytes, port, seeds, and deployment timing. A (typically global) var may
// be assigned the result of one of the preset functions for use as the
// application's active profile:
//
//	var profile = chaincfg.MainNetProfile()
//
//	func main() {
//	        if *testnet {
//	                profile = chaincfg.TestNetProfile()
//	        }
//	        chainID := profile.ChainID(chainhash.SoftwareSHA3)
//	        // ...
//	}
//
// A profile may also be loaded from an external document at runtime via
// ParseProfile, for networks that are not one of the three built-in
// presets.
package chaincfg
