package main

import (
	"github.com/sevigo/bookpurr/internal/cli"
)

// main delegates to the cobra root command.
func main() {
	cli.Execute()
}
