package main

import "github.com/giygas/compatibility-api/cli"

func main() {
	cli.Execute()
}
