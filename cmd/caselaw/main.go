package main

import "caselaw/internal/cli"

func main() {
	cli.Execute()
}
