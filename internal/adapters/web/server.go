package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"raidbot/internal/domain"
	"raidbot/internal/domain/entities"
	"raidbot/internal/ports/input"
)

// AssignmentDispatcher sends the approved formation to its members.
// Implemented by the Discord adapter's Dispatcher.
type AssignmentDispatcher interface {
	Dispatch(ctx context.Context, formation *entities.Formation, event *entities.Event) entities.DispatchReport
}

// ForceRefresher forces an immediate embed refresh after dispatch.
type ForceRefresher interface {
	Force(eventID uint)
}

// Server exposes the token-gated formation editing API consumed by the
// web dashboard.
type Server struct {
	router     *mux.Router
	tokens     *TokenStore
	events     input.EventUseCase
	formations input.FormationUseCase
	dispatcher AssignmentDispatcher
	refresher  ForceRefresher
	srv        *http.Server
	done       chan struct{}
	log        *zap.Logger
}

func NewServer(
	addr string,
	tokens *TokenStore,
	events input.EventUseCase,
	formations input.FormationUseCase,
	dispatcher AssignmentDispatcher,
	refresher ForceRefresher,
	log *zap.Logger,
) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		tokens:     tokens,
		events:     events,
		formations: formations,
		dispatcher: dispatcher,
		refresher:  refresher,
		done:       make(chan struct{}),
		log:        log,
	}
	s.router.HandleFunc("/formation/{token}", s.handleGetFormation).Methods(http.MethodGet)
	s.router.HandleFunc("/formation/{token}", s.handlePostFormation).Methods(http.MethodPost)
	s.srv = &http.Server{Addr: addr, Handler: s.router}
	return s
}

// Start serves until Shutdown; it also owns the token expiry sweep.
func (s *Server) Start() error {
	go s.sweepLoop(time.Minute)
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// sweepLoop drops expired tokens until Shutdown.
func (s *Server) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.tokens.Sweep()
		case <-s.done:
			return
		}
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	close(s.done)
	return s.srv.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

type formationResponse struct {
	Event     eventInfo           `json:"event"`
	Formation *entities.Formation `json:"formation"`
}

type eventInfo struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	EventTime time.Time `json:"eventTime"`
	Closed    bool      `json:"closed"`
}

type editPayload struct {
	ProcessedParties []entities.ProcessedParty `json:"processedParties"`
	AvailableMembers []entities.PoolMember     `json:"availableMembers"`
}

type dispatchResponse struct {
	Report entities.DispatchReport `json:"report"`
}

func (s *Server) handleGetFormation(w http.ResponseWriter, r *http.Request) {
	eventID, err := s.tokens.Peek(mux.Vars(r)["token"])
	if err != nil {
		s.writeTokenError(w, err)
		return
	}

	formation, err := s.formations.GetFormation(r.Context(), eventID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "formation not found")
		return
	}
	event, err := s.events.GetEventByID(r.Context(), eventID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "event not found")
		return
	}

	s.writeJSON(w, http.StatusOK, formationResponse{
		Event: eventInfo{
			ID:        event.ID,
			Title:     event.Title,
			EventTime: event.EventTime,
			Closed:    event.Closed,
		},
		Formation: formation,
	})
}

// handlePostFormation accepts the revised layout, consumes the token,
// dispatches the assignment DMs and approves the formation. The token
// is gone even if individual sends fail: delivery failures are part of
// the report, not a reason to retry the whole batch.
func (s *Server) handlePostFormation(w http.ResponseWriter, r *http.Request) {
	var payload editPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed payload")
		return
	}

	eventID, err := s.tokens.Consume(mux.Vars(r)["token"])
	if err != nil {
		s.writeTokenError(w, err)
		return
	}

	formation, err := s.formations.SaveEdit(r.Context(), eventID, payload.ProcessedParties, payload.AvailableMembers)
	if err != nil {
		if errors.Is(err, domain.ErrFormationNotFound) {
			s.writeError(w, http.StatusNotFound, "formation not found")
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	event, err := s.events.GetEventByID(r.Context(), eventID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "event not found")
		return
	}

	report := s.dispatcher.Dispatch(r.Context(), formation, event)
	if err := s.formations.Approve(r.Context(), eventID); err != nil {
		s.log.Error("approve after dispatch failed", zap.Uint("event_id", eventID), zap.Error(err))
	}
	s.refresher.Force(eventID)

	s.writeJSON(w, http.StatusOK, dispatchResponse{Report: report})
}

func (s *Server) writeTokenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		s.writeError(w, http.StatusGone, "edit link expired")
	default:
		s.writeError(w, http.StatusNotFound, "edit link unknown")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("write response failed", zap.Error(err))
	}
}
