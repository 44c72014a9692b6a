package main

import (
	"log"

	"github.com/sjzar/mcpprobe/cmd/mcpprobe"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	mcpprobe.Execute()
}
