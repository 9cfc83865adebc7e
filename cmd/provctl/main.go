package main

import "provenance-workflow-service/internal/cli"

func main() {
	cli.Execute()
}
