package main

import "github.com/srcmeta/srcmeta/internal/cli"

func main() {
	cli.Execute()
}
