package main

import (
	"os"

	"github.com/go-i2p/boardcfg/lib/cli"
)

func main() {
	os.Exit(cli.Execute())
}
