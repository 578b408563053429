// Package web holds the embedded dashboard assets so the binary ships
// self-contained.
package web

import "embed"

//go:embed templates/index.html
var Templates embed.FS
