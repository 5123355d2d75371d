// SPDX-License-Identifier: MIT

// Command quantgen runs the quantitative-genetics kernels on JSON requests.
//
//	quantgen status
//	quantgen grm   --input req.json [--config quantgen.yaml]
//	quantgen blup  --input req.json
//	quantgen gblup --input req.json
//	quantgen reml  --input req.json
//
// Requests are read from --input ("-" for stdin); results are written to
// stdout as JSON. Logs go to stderr.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "quantgen:", err)
		os.Exit(1)
	}
}
