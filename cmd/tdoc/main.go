package main

import (
	"os"

	"github.com/andxor/tdoc/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
