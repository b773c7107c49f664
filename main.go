package main

import "github.com/sadopc/feet/internal/cli"

func main() {
	cli.Execute()
}
