package main

import "github.com/R167/lintbridge/internal/cli"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.Main(version)
}
