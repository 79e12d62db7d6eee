// Command ctagent runs the clinical trial documentation and monitoring agents.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		fatal(err)
		os.Exit(1)
	}
}
