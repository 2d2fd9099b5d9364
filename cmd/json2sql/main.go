// Package main is the entry point for the json2sql command-line converter.
package main

import (
	"os"

	"jsonsql/internal/cli"
	_ "jsonsql/internal/pipeline/sources"
)

func main() {
	os.Exit(cli.Execute())
}
