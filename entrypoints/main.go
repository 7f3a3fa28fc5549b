package main

import (
	"github.com/Laisky/word-association/cmd"
	"github.com/Laisky/word-association/library/log"
)

func main() {
	defer log.Logger.Sync() //nolint:errcheck

	cmd.Execute()
}
