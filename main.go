package main

import (
	"os"
)

var (
	GitCommit string
	GitTag    string
	BuildTime string
)

func main() {
	os.Exit(Execute())
}
