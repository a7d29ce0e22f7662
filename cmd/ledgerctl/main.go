// Command ledgerctl queries the ledger and moves tokens through the same
// client stack the gateway uses.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
