// cwal - A wallpaper driven terminal colour scheme generator
//
// cwal extracts base colours from a wallpaper, derives a 16-colour palette
// and writes it to your terminals and applications.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/cwal/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
