// Package ui provides the embedded static assets of the status page.
package ui

import (
	"embed"
	"io/fs"
)

// StaticFiles is an embedded file system containing the files located under the "static" directory.
//
//go:embed static/*
var StaticFiles embed.FS

// Static returns the assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(StaticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
