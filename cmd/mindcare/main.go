// Mindcare is a mood journal with daily analysis and statistics.
package main

import (
	"fmt"
	"os"

	"github.com/swamp-dev/mindcare/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
