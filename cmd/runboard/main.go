package main

import "github.com/emiliopalmerini/runboard/internal/cli"

func main() {
	cli.Execute()
}
