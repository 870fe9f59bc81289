package main

import (
	"unity-viewer/cli"
)

func main() {
	cli.Start()
}
