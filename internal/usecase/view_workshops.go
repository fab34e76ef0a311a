package usecase

import (
	"context"
	"sort"
	"time"

	"workshop-booking/internal/domain"
)

// WorkshopSummary is the list view of one workshop.
type WorkshopSummary struct {
	ID                   int64  `json:"id"`
	Title                string `json:"title"`
	Date                 string `json:"date"`
	Time                 string `json:"time"`
	Location             string `json:"location"`
	RemainingFamilySlots int    `json:"remaining_family_slots"`
	RemainingChildSlots  int    `json:"remaining_child_slots"`
}

// ViewWorkshopsInput filters the listing to workshops on or after From.
type ViewWorkshopsInput struct {
	From time.Time `json:"from"`
}

type ViewWorkshopsResult struct {
	Workshops []WorkshopSummary `json:"workshops"`
}

// ViewWorkshops is read-only. It still enters a unit of work so the listing
// is one consistent snapshot, then leaves without committing.
type ViewWorkshops struct {
	factory domain.UnitOfWorkFactory
}

func NewViewWorkshops(factory domain.UnitOfWorkFactory) *ViewWorkshops {
	return &ViewWorkshops{factory: factory}
}

func (uc *ViewWorkshops) Execute(ctx context.Context, in ViewWorkshopsInput) (*ViewWorkshopsResult, error) {
	uow, err := uc.factory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback()

	all, err := uow.Workshops().ListAll(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]WorkshopSummary, 0, len(all))
	for _, w := range all {
		if w.Date.Before(in.From) {
			continue
		}
		summaries = append(summaries, WorkshopSummary{
			ID:                   w.ID,
			Title:                w.Title,
			Date:                 w.Date.Format("2006-01-02"),
			Time:                 w.StartTime,
			Location:             w.Location,
			RemainingFamilySlots: w.RemainingFamilySlots(),
			RemainingChildSlots:  w.RemainingChildSlots(),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Date != summaries[j].Date {
			return summaries[i].Date < summaries[j].Date
		}
		return summaries[i].Time < summaries[j].Time
	})
	return &ViewWorkshopsResult{Workshops: summaries}, nil
}
