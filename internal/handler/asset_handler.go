package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	formioCSSFile    = "formio.full.min.css"
	bootstrapCSSFile = "bootstrap.min.css"
	immutableCache   = "public, max-age=31536000, immutable"
)

// AssetDirs lists the directories searched, in order, for each asset.
type AssetDirs struct {
	FormioCSS    []string
	BootstrapCSS []string
	Fonts        []string
}

// AssetHandler serves the renderer's stylesheets and fonts from installed
// package directories.
type AssetHandler struct {
	dirs AssetDirs
	log  *zap.Logger
}

func NewAssetHandler(dirs AssetDirs, log *zap.Logger) *AssetHandler {
	return &AssetHandler{dirs: dirs, log: log}
}

func (h *AssetHandler) FormioCSS(w http.ResponseWriter, r *http.Request) {
	h.serve(w, h.dirs.FormioCSS, formioCSSFile, "text/css", "Form.io CSS not found", false)
}

func (h *AssetHandler) BootstrapCSS(w http.ResponseWriter, r *http.Request) {
	h.serve(w, h.dirs.BootstrapCSS, bootstrapCSSFile, "text/css", "Bootstrap CSS not found", false)
}

func (h *AssetHandler) Font(w http.ResponseWriter, r *http.Request) {
	name := FontName(chi.URLParam(r, "font"))
	if name == "" {
		http.Error(w, "Font not found", http.StatusNotFound)
		return
	}
	h.serve(w, h.dirs.Fonts, name, FontContentType(name), "Font not found", true)
}

func (h *AssetHandler) serve(w http.ResponseWriter, dirs []string, name, contentType, missing string, cors bool) {
	for _, dir := range dirs {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", immutableCache)
		if cors {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}
	h.log.Warn("Asset not found", zap.String("asset", name), zap.Strings("dirs", dirs))
	http.Error(w, missing, http.StatusNotFound)
}

// FontName strips a cache-busting query and any path components.
func FontName(raw string) string {
	raw, _, _ = strings.Cut(raw, "?")
	name := path.Base(strings.ReplaceAll(raw, `\`, "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}

// FontContentType picks the content type from the font extension.
func FontContentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".woff2"):
		return "font/woff2"
	case strings.HasSuffix(name, ".woff"):
		return "font/woff"
	case strings.HasSuffix(name, ".ttf"):
		return "font/ttf"
	}
	return "application/octet-stream"
}
