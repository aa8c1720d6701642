package controllers

import (
	"embed"
	"net/http"
)

//go:embed assets/index.html
var dashboardFS embed.FS

// DashboardController serves the built-in single-page UI. The page is
// static; everything it shows comes from the JSON API.
type DashboardController struct {
	page []byte
}

func NewDashboardController() *DashboardController {
	page, err := dashboardFS.ReadFile("assets/index.html")
	if err != nil {
		// The asset is compiled into the binary; failing here is a build defect.
		panic(err)
	}
	return &DashboardController{page: page}
}

func (dc *DashboardController) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(dc.page)
}
