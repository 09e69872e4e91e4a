// Command task is the CLI entrypoint: a thin wrapper around the cobra
// root command in internal/cmd.
package main

import (
	"os"

	"github.com/taskwarrior-go/task/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
