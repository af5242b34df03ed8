package main

import (
	"os"

	"github.com/mailsig/sigsync/cmd/sigsync/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
