// Command impactlens scores an organization's public community-impact evidence
package main

import (
	"fmt"
	"os"

	"github.com/ppiankov/impactlens/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
