// Command tryrwstress hammers a single TryRWLock from many goroutines and
// checks reader/writer exclusion while it runs.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
