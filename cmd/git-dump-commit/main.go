package main

import (
	"os"

	"github.com/dshills/gitdump/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
