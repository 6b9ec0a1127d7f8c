package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/jengatower/pkg/errors"
	"github.com/matzehuels/jengatower/pkg/pipeline"
	"github.com/matzehuels/jengatower/pkg/tower"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
	"github.com/matzehuels/jengatower/pkg/tower/reconfig"
)

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", s.handleSnapshot)
		r.Post("/view", s.handleView)
		r.Get("/physics", s.handlePhysics)
		r.Post("/physics", s.handleSetPhysics)
		r.Post("/slowmo", s.handleSlowMotion)
		r.Get("/layout", s.handleLayout)
		r.Get("/network/{format}", s.handleNetwork)
	})

	r.Get("/ws", s.handleSocket)

	if s.opts.Metrics != nil {
		r.Handle("/metrics", s.opts.Metrics.Handler())
	}
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap tower.Snapshot
	if err := s.do(r.Context(), func(e *tower.Engine) { snap = e.Snapshot() }); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type viewRequest struct {
	Sort string `json:"sort"`
}

type viewResponse struct {
	Key   string         `json:"key"`
	Phase reconfig.Phase `json:"phase"`
}

// handleView starts a reconfiguration. A request arriving while one is in
// flight gets 409 and leaves the running transition untouched.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode view request"))
		return
	}
	key, err := layout.ParseSortKey(req.Sort)
	if err != nil {
		writeError(w, err)
		return
	}

	var (
		started bool
		phase   reconfig.Phase
	)
	err = s.do(r.Context(), func(e *tower.Engine) {
		started = e.Reconfigure(key)
		phase = e.Phase()
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if !started {
		writeError(w, errors.New(errors.ErrCodeReconfigBusy, "a reconfiguration is already running (%s)", phase))
		return
	}
	writeJSON(w, http.StatusAccepted, viewResponse{Key: key.String(), Phase: phase})
}

type physicsState struct {
	Enabled *bool `json:"enabled"`
}

func (s *Server) handlePhysics(w http.ResponseWriter, r *http.Request) {
	var on bool
	if err := s.do(r.Context(), func(e *tower.Engine) { on = e.Physics() }); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, physicsState{Enabled: &on})
}

// handleSetPhysics sets physics to the requested state, or toggles it when
// the body omits "enabled".
func (s *Server) handleSetPhysics(w http.ResponseWriter, r *http.Request) {
	var req physicsState
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode physics request"))
			return
		}
	}
	var on bool
	err := s.do(r.Context(), func(e *tower.Engine) {
		if req.Enabled == nil {
			on = e.TogglePhysics()
			return
		}
		e.SetPhysics(*req.Enabled)
		on = e.Physics()
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, physicsState{Enabled: &on})
}

func (s *Server) handleSlowMotion(w http.ResponseWriter, r *http.Request) {
	var req physicsState
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, `body must be {"enabled": true|false}`))
		return
	}
	if err := s.do(r.Context(), func(e *tower.Engine) { e.SetSlowMotion(*req.Enabled) }); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// handleLayout returns the target layout for ?sort= without touching the
// live tower. It defaults to the tower's current key.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var (
		key   layout.SortKey
		specs []layout.BlockSpec
	)
	raw := r.URL.Query().Get("sort")
	if raw != "" {
		k, err := layout.ParseSortKey(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		key = k
	}
	err := s.do(r.Context(), func(e *tower.Engine) {
		if raw == "" {
			key = e.Key()
		}
		specs = e.Layout(key)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pipeline.Export(specs, key, s.opts.Layout))
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	q := r.URL.Query()
	detailed, _ := strconv.ParseBool(q.Get("detailed"))
	opts := pipeline.Options{Highlight: q.Get("highlight"), Detailed: detailed}

	out, err := s.opts.Runner.Network(r.Context(), s.ds, s.opts.DatasetHash, format, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	switch format {
	case pipeline.FormatSVG:
		w.Header().Set("Content-Type", "image/svg+xml")
	default:
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	}
	if _, err := w.Write(out); err != nil {
		s.logger.Debug("network write failed", "format", format, "err", err)
	}
}

type socketMessage struct {
	Action  string `json:"action"`
	Sort    string `json:"sort,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
}

// handleSocket streams snapshots and accepts view, physics and slowmo
// actions from the client. It returns when the client disconnects.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("socket upgrade failed", "err", err)
		return
	}
	ctx := r.Context()
	if !s.hub.join(ctx, conn) {
		conn.Close()
		return
	}
	defer s.hub.leave(ctx, conn)

	// Prime the new client without waiting for the next broadcast.
	if err := s.do(ctx, func(*tower.Engine) { s.publish() }); err != nil {
		s.logger.Debug("socket prime failed", "err", err)
	}

	for {
		var msg socketMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("socket read failed", "err", err)
			}
			return
		}
		if err := s.apply(ctx, msg); err != nil {
			s.logger.Info("socket action refused", "action", msg.Action, "err", err)
		}
	}
}

func (s *Server) apply(ctx context.Context, msg socketMessage) error {
	switch msg.Action {
	case "view":
		key, err := layout.ParseSortKey(msg.Sort)
		if err != nil {
			return err
		}
		var started bool
		if err := s.do(ctx, func(e *tower.Engine) { started = e.Reconfigure(key) }); err != nil {
			return err
		}
		if !started {
			return errors.New(errors.ErrCodeReconfigBusy, "a reconfiguration is already running")
		}
		return nil
	case "physics":
		return s.do(ctx, func(e *tower.Engine) {
			if msg.Enabled == nil {
				e.TogglePhysics()
				return
			}
			e.SetPhysics(*msg.Enabled)
		})
	case "slowmo":
		if msg.Enabled == nil {
			return errors.New(errors.ErrCodeInvalidInput, "slowmo needs enabled")
		}
		return s.do(ctx, func(e *tower.Engine) { e.SetSlowMotion(*msg.Enabled) })
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown action %q", msg.Action)
	}
}
