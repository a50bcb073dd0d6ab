// Command contracts validates and serializes JSON and YAML documents with
// contracts declared in a schema file.
package main

import (
	"os"

	"github.com/reoring/contracts/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
