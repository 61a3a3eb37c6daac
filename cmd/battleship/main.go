package main

import "github.com/bitbybit/go-battleship/internal/cli"

func main() {
	cli.Execute()
}
