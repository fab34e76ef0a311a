// Package httpapi exposes the use cases over JSON HTTP. Handlers stay
// thin: decode, call the use case, map the error kind to a status code.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"workshop-booking/internal/usecase"
	"workshop-booking/pkg/database"
	errs "workshop-booking/pkg/errors"
	"workshop-booking/pkg/logging"
	"workshop-booking/pkg/metrics"
)

// UseCases bundles every operation the API serves.
type UseCases struct {
	CreateWorkshop     *usecase.CreateWorkshop
	EditWorkshop       *usecase.EditWorkshop
	DeleteWorkshop     *usecase.DeleteWorkshop
	UpdateAvailability *usecase.UpdateAvailability
	ViewWorkshops      *usecase.ViewWorkshops
	ViewBookings       *usecase.ViewBookings
	CreateBooking      *usecase.CreateBooking
	CancelBooking      *usecase.CancelBooking
	LinkBookings       *usecase.LinkBookings
	RegisterGuardian   *usecase.RegisterGuardian
}

// Server wires the router. db is optional; when present the health
// endpoint also pings it.
type Server struct {
	uc  UseCases
	db  *database.DB
	log *logging.Logger
}

func NewServer(uc UseCases, db *database.DB, log *logging.Logger) *Server {
	return &Server{uc: uc, db: db, log: log.WithComponent("httpapi")}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)

	r.HandleFunc("/healthz", s.healthHandler).Methods("GET")
	r.Handle("/metrics", metrics.Default.Handler()).Methods("GET")

	r.HandleFunc("/workshops", s.listWorkshopsHandler).Methods("GET")
	r.HandleFunc("/workshops", s.createWorkshopHandler).Methods("POST")
	r.HandleFunc("/workshops/{id:[0-9]+}", s.editWorkshopHandler).Methods("PUT")
	r.HandleFunc("/workshops/{id:[0-9]+}", s.deleteWorkshopHandler).Methods("DELETE")
	r.HandleFunc("/workshops/{id:[0-9]+}/availability", s.updateAvailabilityHandler).Methods("POST")
	r.HandleFunc("/workshops/{id:[0-9]+}/bookings", s.listBookingsHandler).Methods("GET")

	r.HandleFunc("/bookings", s.createBookingHandler).Methods("POST")
	r.HandleFunc("/bookings/{id:[0-9]+}/cancel", s.cancelBookingHandler).Methods("POST")

	r.HandleFunc("/guardians", s.registerGuardianHandler).Methods("POST")
	r.HandleFunc("/guardians/{id:[0-9]+}/bookings", s.linkBookingsHandler).Methods("POST")

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorBody struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Details any    `json:"details,omitempty"`
}

// writeError maps error kinds to HTTP statuses. Details carries the
// partial result for partial_failure responses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, details any) {
	kind := errs.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case errs.KindValidation:
		status = http.StatusBadRequest
	case errs.KindUnauthorized:
		status = http.StatusForbidden
	case errs.KindNotFound:
		status = http.StatusNotFound
	case errs.KindWorkshopFull, errs.KindDuplicateChildBooking,
		errs.KindAlreadyCancelled, errs.KindCommit:
		status = http.StatusConflict
	case errs.KindPartialFailure:
		status = http.StatusMultiStatus
	}

	msg := err.Error()
	var e *errs.Error
	if errors.As(err, &e) {
		msg = e.Msg
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", err,
			logging.String("path", r.URL.Path),
			logging.RequestID(requestIDFrom(r.Context())))
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg, Kind: string(kind), Details: details})
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.NewValidation("httpapi.decode", "malformed request body", err)
	}
	return nil
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
