package main

import (
	"os"

	"github.com/folio-labs/folio-go/cmd/folioctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
