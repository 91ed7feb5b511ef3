package main

import "github.com/kailas-cloud/pdfagent/internal/cli"

func main() {
	cli.Execute()
}
