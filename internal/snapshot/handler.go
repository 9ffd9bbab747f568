package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dragpoint/geodrag/internal/drag"
	"github.com/dragpoint/geodrag/internal/engine"
	"github.com/dragpoint/geodrag/internal/geom"
	"github.com/dragpoint/geodrag/internal/library"
	"github.com/dragpoint/geodrag/internal/render"
)

const maxSide = 4096

type Handler struct {
	library *library.Service
	opts    render.Options
}

// NewHandler serves PNG snapshots; opts supplies the default size and font.
func NewHandler(lib *library.Service, opts render.Options) *Handler {
	return &Handler{library: lib, opts: opts}
}

// Snapshot handles GET /constructions/{id}/snapshot.png. The optional x
// and y query parameters place the free point; width and height override
// the image size.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	q := r.URL.Query()

	opts := h.opts
	var err error
	if opts.Width, err = intParam(q.Get("width"), opts.Width); err != nil {
		writeError(w, http.StatusBadRequest, "invalid width")
		return
	}
	if opts.Height, err = intParam(q.Get("height"), opts.Height); err != nil {
		writeError(w, http.StatusBadRequest, "invalid height")
		return
	}

	c, err := h.library.Compile(r.Context(), id)
	if err != nil {
		library.HandleError(w, err)
		return
	}

	pos := c.Free.Pos
	if q.Has("x") || q.Has("y") {
		x, errX := strconv.ParseFloat(q.Get("x"), 64)
		y, errY := strconv.ParseFloat(q.Get("y"), 64)
		if errX != nil || errY != nil {
			writeError(w, http.StatusBadRequest, "x and y must both be numbers")
			return
		}
		pos = geom.V(x, y)
	}

	sc, err := c.SceneAt(pos)
	if err != nil {
		var outside *drag.OutOfDomainError
		var rule *engine.RuleError
		if errors.As(err, &outside) || errors.As(err, &rule) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("build snapshot scene", "construction", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	raster, err := render.NewRaster(c.View, opts)
	if err != nil {
		slog.Error("create raster", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer raster.Close()

	if err := raster.RenderScene(sc); err != nil {
		slog.Error("render snapshot", "construction", id, "error", err)
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	var buf bytes.Buffer
	if err := raster.EncodePNG(&buf); err != nil {
		slog.Error("encode snapshot", "construction", id, "error", err)
		writeError(w, http.StatusInternalServerError, "encode failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > maxSide {
		return 0, errors.New("out of range")
	}
	return n, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
