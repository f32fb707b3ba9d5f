package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Mount attaches the block routes to r:
//
//	GET  /blocks/site-counts         rendered markup (text/html)
//	POST /blocks/site-counts/render  rendered markup (JSON)
//	GET  /content-types              public types with counts
//	GET  /metrics                    Prometheus metrics, when gatherer is set
func Mount(r chi.Router, h *BlockHandler, gatherer prometheus.Gatherer) {
	r.Mount("/blocks/site-counts", h.Routes())
	r.Get("/content-types", h.ContentTypes)
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
}
