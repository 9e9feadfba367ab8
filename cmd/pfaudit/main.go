package main

import "github.com/pfaudit/pfaudit/internal/cli"

func main() {
	cli.Execute()
}
