package main

import (
	"os"

	"github.com/hashicorp-forge/geniectl/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
