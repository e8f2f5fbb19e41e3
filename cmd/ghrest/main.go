package main

import "github.com/tansive/ghrest/internal/cli"

func main() {
	cli.Execute()
}
