package mock

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dsaferreira/doppelganger-go/internal/config"
)

// writeResponse emits the response for a matched mapping and returns the
// status code actually written, for metrics.
func writeResponse(w http.ResponseWriter, mapping config.Mapping) int {
	if mapping.Content == nil {
		w.WriteHeader(mapping.Code)
		return mapping.Code
	}

	switch mapping.Content.Kind {
	case config.ContentJSON:
		return writeJSON(w, mapping.Code, mapping.Content.JSONData)
	case config.ContentFile:
		return writeFile(w, mapping.Code, mapping.Content.FilePath)
	default:
		w.WriteHeader(mapping.Code)
		return mapping.Code
	}
}

func writeJSON(w http.ResponseWriter, code int, data any) int {
	body, err := json.Marshal(data)
	if err != nil {
		return writeServerError(w, "marshal response content")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
	return code
}

// writeFile streams the file named by path, opening and closing its own
// handle per request rather than caching it across requests.
func writeFile(w http.ResponseWriter, code int, path string) int {
	f, err := os.Open(path)
	if err != nil {
		return writeServerError(w, "open response file")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return writeServerError(w, "stat response file")
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code)
	if _, err := io.CopyN(w, f, info.Size()); err != nil {
		return code
	}
	return code
}

func writeServerError(w http.ResponseWriter, reason string) int {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": reason})
	return http.StatusInternalServerError
}

// writeNoMatch writes the standard response for a request that matched no
// mapping on its endpoint.
func writeNoMatch(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "No matching mapping found"})
}
