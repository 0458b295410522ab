package main

import (
	"os"

	"github.com/MrEthical07/goAuthClient/cmd/goauth-client/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
