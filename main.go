package main

import (
	"log"

	"github.com/anoixa/pixelwise/cmd"
	"github.com/anoixa/pixelwise/config"
)

func main() {
	log.Printf("pixelwise %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
