// Command ziva checks marketplace listings for fake prices. It serves the
// trust engine over HTTP, or scans a single link from the terminal.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
