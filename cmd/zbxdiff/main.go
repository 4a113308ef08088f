package main

import (
	"github.com/zbxdiff/zbxdiff/pkg/cli"
)

func main() {
	cli.Execute()
}
