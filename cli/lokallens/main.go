package main

import (
	"os"

	lokallenscmder "github.com/lokallens/lokallens/cmd/lokallens"
)

func main() {
	cmd := lokallenscmder.NewLokallensCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
