package main

import (
	"context"
	"os"

	"github.com/ardnew/clip/cli"
)

func main() {
	os.Exit(cli.Run(context.Background(), os.Args))
}
