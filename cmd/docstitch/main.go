package main

import "docstitch/internal/cli"

func main() {
	cli.Execute()
}
