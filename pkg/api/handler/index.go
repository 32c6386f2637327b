package handler

import (
	_ "embed"
	"net/http"
)

//go:embed index.html
var indexHTML []byte

type index struct{}

func NewIndex() *index {
	return &index{}
}

// ServeHome serves the chat UI.
func (i *index) ServeHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}
