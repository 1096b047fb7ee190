package main

import (
	"os"

	"chatwarden/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args))
}
