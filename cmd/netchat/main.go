package main

import "github.com/vovakirdan/netchat-server/internal/cli"

func main() {
	cli.Execute()
}
