// Command assignctl inspects and drives replica assignment state stored in a
// NATS JetStream KV bucket.
//
// Configuration precedence: flags, then ASSIGNCTL_* environment variables,
// then the YAML file given with --config, then built-in defaults.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
