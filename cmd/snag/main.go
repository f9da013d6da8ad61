package main

import (
	"os"

	"snag/cli"
)

func main() {
	os.Exit(cli.Execute())
}
