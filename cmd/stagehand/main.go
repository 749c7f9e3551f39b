// Command stagehand runs the stagehand JSON:API server.
package main

import (
	"fmt"
	"os"

	"github.com/mwhitworth/stagehand/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
