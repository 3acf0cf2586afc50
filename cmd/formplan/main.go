package main

import (
	"os"

	"github.com/msto63/formplan/cmd/formplan/cmd"
)

func main() {
	os.Exit(cmd.ExitCode(cmd.Execute()))
}
