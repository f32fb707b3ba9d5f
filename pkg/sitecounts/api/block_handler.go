package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/site-counts/pkg/sitecounts"
)

// RenderRequest is the request body for rendering the block
type RenderRequest struct {
	Attributes sitecounts.Attributes    `json:"attributes"`
	Content    string                   `json:"content,omitempty"`
	Context    sitecounts.RenderContext `json:"context"`
}

// ContentTypeResponse is one entry of the content type listing
type ContentTypeResponse struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// BlockHandler handles HTTP requests for the site counts block
type BlockHandler struct {
	block   sitecounts.Block
	metrics *Metrics
}

// NewBlockHandler creates a new block handler. metrics may be nil.
func NewBlockHandler(block sitecounts.Block, metrics *Metrics) *BlockHandler {
	return &BlockHandler{
		block:   block,
		metrics: metrics,
	}
}

// Routes returns the routes for the block
func (h *BlockHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.RenderHTML)
	r.Post("/render", h.RenderJSON)

	return r
}

// RenderHTML renders the block from query parameters and writes the markup
func (h *BlockHandler) RenderHTML(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var currentID sitecounts.ItemID
	if raw := q.Get("current_item_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			slog.Error("Invalid current item ID", "current_item_id", raw, "error", err)
			http.Error(w, "Invalid current item ID", http.StatusBadRequest)
			return
		}
		currentID = sitecounts.ItemID(id)
	}

	attrs := sitecounts.Attributes{
		ClassName: q.Get("class_name"),
		Anchor:    q.Get("anchor"),
	}
	rc := sitecounts.RenderContext{
		CurrentItemID: currentID,
		Style: sitecounts.StyleContext{
			TextColor:             q.Get("text_color"),
			CustomTextColor:       q.Get("custom_text_color"),
			BackgroundColor:       q.Get("background_color"),
			CustomBackgroundColor: q.Get("custom_background_color"),
			FontSize:              q.Get("font_size"),
			CustomFontSize:        q.Get("custom_font_size"),
		},
	}

	result, err := h.render(r, attrs, "", rc)
	if err != nil {
		slog.Error("Failed to render block", "error", err)
		http.Error(w, "Failed to render block", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(result.Markup))
}

// RenderJSON renders the block from a JSON request body
func (h *BlockHandler) RenderJSON(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Invalid request body", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Context.CurrentItemID < 0 {
		slog.Error("Invalid current item ID", "current_item_id", req.Context.CurrentItemID)
		http.Error(w, "Invalid current item ID", http.StatusBadRequest)
		return
	}

	result, err := h.render(r, req.Attributes, req.Content, req.Context)
	if err != nil {
		slog.Error("Failed to render block", "error", err)
		http.Error(w, "Failed to render block", http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, result)
}

// ContentTypes lists every public content type with its published count
func (h *BlockHandler) ContentTypes(w http.ResponseWriter, r *http.Request) {
	counts, err := h.block.Counts(r.Context())
	if err != nil {
		slog.Error("Failed to count content types", "error", err)
		http.Error(w, "Failed to count content types", http.StatusInternalServerError)
		return
	}

	resp := make([]ContentTypeResponse, len(counts))
	for i, c := range counts {
		resp[i] = ContentTypeResponse{Slug: c.TypeSlug, Name: c.TypeName, Count: c.Count}
	}
	render.JSON(w, r, resp)
}

func (h *BlockHandler) render(r *http.Request, attrs sitecounts.Attributes, content string, rc sitecounts.RenderContext) (*sitecounts.RenderResult, error) {
	start := time.Now()
	result, err := h.block.Render(r.Context(), attrs, content, rc)
	h.metrics.observe(start, err)
	return result, err
}
