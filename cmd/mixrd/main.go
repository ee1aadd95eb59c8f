package main

import "github.com/LeJamon/goMIXR/internal/cli"

func main() {
	cli.Execute()
}
