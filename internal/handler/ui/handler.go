package ui

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var assets embed.FS

type Handler struct {
	static fs.FS
}

// Index serves the chat page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "index.html")
}

// Debug serves the connection diagnostics page.
func (h *Handler) Debug(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "debug.html")
}

// Static serves the page assets. Mount it under /static/.
func (h *Handler) Static() http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.FS(h.static)))
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request, name string) {
	bs, err := fs.ReadFile(h.static, name)
	if err != nil {
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(bs)
}

func NewHandler() *Handler {
	static, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}

	return &Handler{
		static: static,
	}
}
