package main

import "github.com/FACorreiaa/triply/internal/cli"

func main() {
	cli.Execute()
}
