// Command qsearch runs Grover's quantum search on a local simulator or a
// remote job service.
package main

import (
	"context"
	"os"

	"github.com/roach88/qsearch/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
