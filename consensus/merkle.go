// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import "github.com/rubinprotocol/rubind/chainhash"

// merkleRoot computes the tagged binary Merkle root over leaves using the
// given leaf/node domain tags, promoting an unpaired trailing node
// unchanged to the next level instead of duplicating it (spec.md section
// 4.4's odd-promotion rule).
func merkleRoot(leafTag, nodeTag byte, ids []chainhash.Hash, hashFn chainhash.HashFunc) chainhash.Hash {
	if len(ids) == 0 {
		return hashFn([]byte{leafTag})
	}
	level := make([]chainhash.Hash, len(ids))
	for i, id := range ids {
		buf := make([]byte, 0, 33)
		buf = append(buf, leafTag)
		buf = append(buf, id[:]...)
		level[i] = hashFn(buf)
	}
	for len(level) > 1 {
		next := make([]chainhash.Hash, 0, (len(level)+1)/2)
		i := 0
		for ; i+1 < len(level); i += 2 {
			buf := make([]byte, 0, 65)
			buf = append(buf, nodeTag)
			buf = append(buf, level[i][:]...)
			buf = append(buf, level[i+1][:]...)
			next = append(next, hashFn(buf))
		}
		if i < len(level) {
			next = append(next, level[i])
		}
		level = next
	}
	return level[0]
}

// TxIDMerkleRoot computes the root used as header.merkle_root.
func TxIDMerkleRoot(txids []chainhash.Hash, hashFn chainhash.HashFunc) chainhash.Hash {
	return merkleRoot(MerkleLeafTxID, MerkleNodeTxID, txids, hashFn)
}

// WtxIDMerkleRoot computes the witness root over wtxids, with the
// coinbase's wtxid replaced by the zero hash to break self-reference per
// spec.md section 4.4.
func WtxIDMerkleRoot(wtxids []chainhash.Hash, hashFn chainhash.HashFunc) chainhash.Hash {
	adjusted := make([]chainhash.Hash, len(wtxids))
	copy(adjusted, wtxids)
	if len(adjusted) > 0 {
		adjusted[0] = chainhash.Hash{}
	}
	return merkleRoot(MerkleLeafWtxid, MerkleNodeWtxid, adjusted, hashFn)
}

// WitnessCommitment computes SHA3-256("RUBIN-WITNESS/" || witness_root).
func WitnessCommitment(witnessRoot chainhash.Hash, hashFn chainhash.HashFunc) chainhash.Hash {
	buf := append([]byte(WitnessTag), witnessRoot[:]...)
	return hashFn(buf)
}
