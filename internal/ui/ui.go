// Package ui embeds the browser front end.
package ui

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var static embed.FS

// Handler serves index.html for "/" and any file under static/.
func Handler() http.Handler {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		// the embed directive guarantees the directory exists
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
