package main

import (
	"github.com/dkzhang/stockchat/internal/cli"
)

func main() {
	cli.Run()
}
