package main

import (
	"os"

	"github.com/solatis/rulequery/cmd/rulequery/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
