package main

import "github.com/mcoot/truthlie/internal/cli"

func main() {
	cli.Execute()
}
