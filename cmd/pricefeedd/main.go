package main

import "github.com/LeJamon/goPriceFeed/internal/cli"

func main() {
	cli.Execute()
}
