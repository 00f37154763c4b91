// Command ascend is a thin command line front end over the multi-agent
// academic assistant: it marshals flags into typed tasks, dispatches them to
// the configured agent and prints the resulting envelope.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
