package main

import "github.com/esm-dev/preconstruct/cli"

func main() {
	cli.Run()
}
