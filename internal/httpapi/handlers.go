package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"workshop-booking/internal/usecase"
	errs "workshop-booking/pkg/errors"
)

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func (s *Server) listWorkshopsHandler(w http.ResponseWriter, r *http.Request) {
	// default to upcoming workshops; ?from=YYYY-MM-DD widens or narrows
	from := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			s.writeError(w, r, errs.NewValidation("httpapi.listWorkshops", "from must be YYYY-MM-DD", err), nil)
			return
		}
		from = parsed
	}
	res, err := s.uc.ViewWorkshops.Execute(r.Context(), usecase.ViewWorkshopsInput{From: from})
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type workshopRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"`
	Location    string `json:"location"`
	MaxFamilies int    `json:"max_families"`
	MaxChildren int    `json:"max_children"`
}

func (req workshopRequest) date() (time.Time, error) {
	return time.Parse("2006-01-02", req.Date)
}

func (s *Server) createWorkshopHandler(w http.ResponseWriter, r *http.Request) {
	var req workshopRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	date, err := req.date()
	if err != nil {
		s.writeError(w, r, errs.NewValidation("httpapi.createWorkshop", "date must be YYYY-MM-DD", err), nil)
		return
	}
	res, err := s.uc.CreateWorkshop.Execute(r.Context(), usecase.CreateWorkshopInput{
		Title:       req.Title,
		Date:        date,
		StartTime:   req.Time,
		Location:    req.Location,
		MaxFamilies: req.MaxFamilies,
		MaxChildren: req.MaxChildren,
		Caller:      callerFrom(r),
	})
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) editWorkshopHandler(w http.ResponseWriter, r *http.Request) {
	var req workshopRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	date, err := req.date()
	if err != nil {
		s.writeError(w, r, errs.NewValidation("httpapi.editWorkshop", "date must be YYYY-MM-DD", err), nil)
		return
	}
	res, err := s.uc.EditWorkshop.Execute(r.Context(), usecase.EditWorkshopInput{
		WorkshopID:  pathID(r),
		Title:       req.Title,
		Date:        date,
		StartTime:   req.Time,
		Location:    req.Location,
		MaxFamilies: req.MaxFamilies,
		MaxChildren: req.MaxChildren,
		Caller:      callerFrom(r),
	})
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) deleteWorkshopHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.uc.DeleteWorkshop.Execute(r.Context(), usecase.DeleteWorkshopInput{
		WorkshopID: pathID(r),
		Caller:     callerFrom(r),
	})
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) updateAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FamilySlotsChange int `json:"family_slots_change"`
		ChildSlotsChange  int `json:"child_slots_change"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	res, err := s.uc.UpdateAvailability.Execute(r.Context(), usecase.UpdateAvailabilityInput{
		WorkshopID:        pathID(r),
		FamilySlotsChange: req.FamilySlotsChange,
		ChildSlotsChange:  req.ChildSlotsChange,
		Caller:            callerFrom(r),
	})
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) listBookingsHandler(w http.ResponseWriter, r *http.Request) {
	res, err := s.uc.ViewBookings.Execute(r.Context(), usecase.ViewBookingsInput{
		WorkshopID: pathID(r),
		Caller:     callerFrom(r),
	})
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateBookingInput
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	res, err := s.uc.CreateBooking.Execute(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) cancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err, nil)
			return
		}
	}
	res, err := s.uc.CancelBooking.Execute(r.Context(), usecase.CancelBookingInput{
		BookingID: pathID(r),
		Reason:    req.Reason,
		Caller:    callerFrom(r),
	})
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) registerGuardianHandler(w http.ResponseWriter, r *http.Request) {
	var req usecase.RegisterGuardianInput
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	req.Caller = callerFrom(r)
	res, err := s.uc.RegisterGuardian.Execute(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	status := http.StatusCreated
	if res.Existing {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

func (s *Server) linkBookingsHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookingIDs []int64 `json:"booking_ids"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	res, err := s.uc.LinkBookings.Execute(r.Context(), usecase.LinkBookingsInput{
		GuardianID: pathID(r),
		BookingIDs: req.BookingIDs,
		Caller:     callerFrom(r),
	})
	if err != nil {
		// a partial failure still carries the committed subset
		var details any
		if res != nil {
			details = res
		}
		s.writeError(w, r, err, details)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
