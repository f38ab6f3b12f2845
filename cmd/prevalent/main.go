// Prevalent - dominant colour extraction for images
//
// Prevalent clusters the colours of an image and reports the names of the
// colours that cover the most pixels, for single images or whole URL lists.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"github.com/jmylchreest/prevalent/internal/cli"
)

func main() {
	cli.Execute()
}
