// Package web serves the console page, its static assets and the websocket
// that carries patches and events between a browser tab and its session.
package web

import (
	"embed"
	"io/fs"
)

//go:embed assets/index.html assets/console.js assets/console.css
var assets embed.FS

// Shell is the page every session starts from.
func Shell() []byte {
	b, err := assets.ReadFile("assets/index.html")
	if err != nil {
		panic("web: embedded shell missing: " + err.Error())
	}
	return b
}

func staticFS() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic("web: embedded assets missing: " + err.Error())
	}
	return sub
}
