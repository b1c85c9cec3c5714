package swaggerkit

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.json
var openapi []byte

func serveDocJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(openapi)
}
