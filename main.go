package main

import "presyo-tracker/internal/cli"

func main() {
	cli.Execute()
}
