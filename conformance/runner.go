// Copyright (c) 2018 The ExchangeCoin team
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package conformance

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/rubinprotocol/rubind/consensus"
)

// Run reads one JSON request per line from r and writes one JSON response
// per line to w, until r is exhausted. A line that fails to decode as a
// Request produces a single BAD_REQUEST response rather than aborting the
// whole run, so one malformed line in a fixture file does not hide the
// results of every other line.
func Run(r io.Reader, w io.Writer, caps consensus.Capabilities) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			if encErr := enc.Encode(Response{Ok: false, Err: "BAD_REQUEST"}); encErr != nil {
				return encErr
			}
			continue
		}
		if err := enc.Encode(Dispatch(req, caps)); err != nil {
			return err
		}
	}
	return scanner.Err()
}
