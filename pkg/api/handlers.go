package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/entrhq/webcanvas/pkg/automation"
	"github.com/entrhq/webcanvas/pkg/canvas"
	"github.com/entrhq/webcanvas/pkg/geometry"
	"github.com/entrhq/webcanvas/pkg/host"
	"github.com/entrhq/webcanvas/pkg/logging"
	"github.com/entrhq/webcanvas/pkg/sync"
)

// HandlerOptions configures the API handler.
type HandlerOptions struct {
	// RenderDelay is the wait between persisting a new node and
	// dispatching automation at its geometry, giving the host's render
	// pipeline time to produce the element.
	RenderDelay time.Duration

	// Params builds script parameters for a given ordinal, carrying the
	// configured delays.
	Params func(ordinal int) automation.Params

	// Snapshot, when set, enriches status responses with a summary of
	// the rendered page.
	Snapshot Snapshotter

	// NodeClass and SelectedClass configure snapshot parsing.
	NodeClass     string
	SelectedClass string

	// Logger receives request diagnostics. Nil creates a component logger.
	Logger *logging.Logger
}

// Handler serves the daemon's command endpoints.
type Handler struct {
	store      canvas.Store
	engine     Engine
	dispatcher Dispatcher
	opts       HandlerOptions
	log        *logging.Logger
}

// NewHandler creates an API handler.
func NewHandler(store canvas.Store, engine Engine, dispatcher Dispatcher, opts HandlerOptions) *Handler {
	if opts.Params == nil {
		opts.Params = func(ordinal int) automation.Params {
			return automation.Params{Ordinal: ordinal}
		}
	}
	if opts.NodeClass == "" {
		opts.NodeClass = "canvas-node"
	}
	if opts.SelectedClass == "" {
		opts.SelectedClass = "is-selected"
	}
	if opts.Logger == nil {
		opts.Logger, _ = logging.NewLogger("api")
	}
	return &Handler{
		store:      store,
		engine:     engine,
		dispatcher: dispatcher,
		opts:       opts,
		log:        opts.Logger,
	}
}

type createLinkRequest struct {
	Address string  `json:"address"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`

	// ModelOrdinal, when present, selects a model in the freshly created
	// view once it has rendered.
	ModelOrdinal *int `json:"model_ordinal,omitempty"`
}

type createLinkResponse struct {
	ID string `json:"id"`
	geometry.Rect
	Address string `json:"address"`
}

// CreateLink appends a new link node to the active document and persists
// it. The rendered element appears asynchronously; any requested model
// selection is deferred by the render delay.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Address) == "" {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		writeError(w, http.StatusBadRequest, "width and height must be positive")
		return
	}

	doc, ok, err := h.store.Active(r.Context())
	if err != nil {
		h.log.Errorf("create link: document unreadable: %v", err)
		writeError(w, http.StatusConflict, "canvas document unreadable")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no active canvas document")
		return
	}

	rect := geometry.Rect{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height}
	node := doc.AddLinkNode(req.Address, rect)

	if err := h.store.Persist(r.Context(), doc); err != nil {
		h.log.Errorf("create link: persist failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to persist canvas document")
		return
	}
	h.log.Infof("created link node %s at (%.0f, %.0f)", node.ID, rect.X, rect.Y)

	if req.ModelOrdinal != nil {
		ordinal := *req.ModelOrdinal
		// The element for the new record does not exist yet; wait out
		// the render pipeline before targeting it.
		time.AfterFunc(h.opts.RenderDelay, func() {
			err := h.dispatcher.Dispatch(context.Background(), rect, automation.ScriptModelSelect, h.opts.Params(ordinal))
			if err != nil {
				h.log.Errorf("deferred model select failed: %v", err)
			}
		})
	}

	writeJSON(w, http.StatusCreated, createLinkResponse{
		ID:      node.ID,
		Rect:    rect,
		Address: node.Address,
	})
}

type selectModelRequest struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Ordinal int     `json:"ordinal"`
}

// SelectModel dispatches the model-selection script to the view at the
// given geometry.
func (h *Handler) SelectModel(w http.ResponseWriter, r *http.Request) {
	var req selectModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rect := geometry.Rect{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height}
	if err := h.dispatcher.Dispatch(r.Context(), rect, automation.ScriptModelSelect, h.opts.Params(req.Ordinal)); err != nil {
		h.log.Warnf("model select dispatch failed: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "dispatched"})
}

// Refresh forces one reconciliation pass. A persistence failure inside the
// pass surfaces here as the user-visible notice.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.RunPass(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Stats())
}

type statusResponse struct {
	Stats    sync.Stats          `json:"stats"`
	Elements []host.SnapshotNode `json:"elements,omitempty"`
}

// Status reports engine activity and, when a snapshotter is wired, the
// rendered elements.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Stats: h.engine.Stats()}

	if h.opts.Snapshot != nil {
		pageHTML, err := h.opts.Snapshot.Content(r.Context())
		if err != nil {
			h.log.Debugf("status snapshot unavailable: %v", err)
		} else {
			nodes, err := host.ParseSnapshot(pageHTML, h.opts.NodeClass, h.opts.SelectedClass)
			if err != nil {
				h.log.Debugf("status snapshot unparsable: %v", err)
			} else {
				resp.Elements = nodes
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
