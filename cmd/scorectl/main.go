package main

import "github.com/mcoot/stationscore/internal/cli"

func main() {
	cli.Execute()
}
