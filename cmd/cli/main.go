package main

import (
	"github.com/mzarzor/imagestudio/internal/client/cli"
)

func main() {
	cli.Execute()
}
