package stubapi

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"shopfloor/internal/models"
)

// DefaultEmail and DefaultPassword are the seeded worker credentials.
const (
	DefaultEmail    = "worker@shop.test"
	DefaultPassword = "changeme"
)

func floatPtr(f float64) *float64 { return &f }

// SeedDefaults loads one worker account and a spread of door and window jobs
// across the lifecycle, enough to exercise every list filter.
func (s *Server) SeedDefaults() {
	s.AddUser(DefaultEmail, DefaultPassword, models.User{
		ID:        uuid.NewString(),
		FirstName: "Asha",
		LastName:  "Perera",
		Email:     DefaultEmail,
		UserRole:  "EMPLOYEE",
	})

	now := time.Now()
	due := now.AddDate(0, 0, 14).Format("2006-01-02")
	created := now.Format(time.RFC3339)

	states := []struct {
		progress models.Progress
		status   string
		kind     models.ProductKind
		creation string
	}{
		{models.ProgressNew, models.StatusNew, models.KindDoor, "NEW"},
		{models.ProgressNew, models.StatusNew, models.KindWindow, "STOCK"},
		{models.ProgressPending, models.StatusActive, models.KindDoor, "NEW"},
		{models.ProgressProcessing, models.StatusActive, models.KindWindow, "STOCK"},
		{models.ProgressDone, models.StatusActive, models.KindDoor, "NEW"},
	}

	for i, st := range states {
		attrs := models.ProductAttrs{
			ID:     uuid.NewString(),
			Name:   fmt.Sprintf("%s %d", st.kind, i+1),
			Code:   fmt.Sprintf("P-%03d", i+1),
			Height: "2100",
			Width:  "900",
			Price:  floatPtr(45000 + float64(i)*1000),
		}
		if st.kind == models.KindDoor {
			attrs.DoorColor = "Walnut"
			attrs.TypeOfBoard = "MDF"
			attrs.BoardThickness = "18"
		} else {
			attrs.WindowColor = "White"
			attrs.GlassColor = "Clear"
			attrs.GlassThickness = "5"
		}

		job := models.JobDetail{
			JobSummary: models.JobSummary{
				ID:        uuid.NewString(),
				Status:    st.status,
				Progress:  st.progress,
				Type:      string(st.kind),
				Qty:       1 + i,
				DueDate:   due,
				CreatedAt: created,
				StockItem: models.StockItem{
					ID:      uuid.NewString(),
					Type:    string(st.kind),
					Qty:     1 + i,
					Status:  "IN_STOCK",
					Product: models.Product{Kind: st.kind, Attrs: attrs},
				},
			},
			CreationType: st.creation,
		}
		if st.creation == models.CreationTypeNew {
			job.Quotation = &models.Quotation{
				ID:           uuid.NewString(),
				CustomerName: fmt.Sprintf("Customer %d", i+1),
				Price:        floatPtr(52000 + float64(i)*1500),
			}
		}
		s.AddJob(job)
	}
}
