package tasks

import (
	"fmt"

	"github.com/desertthunder/encore/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPage Phase = iota
	Moderate
	RetryDraft
)

func (p Phase) String() string {
	switch p {
	case FetchPage:
		return "fetch_page"
	case Moderate:
		return "moderate"
	case RetryDraft:
		return "retry_draft"
	default:
		return ""
	}
}

func fetchPageUpdate(page, last, kept int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPage,
		Step:    page,
		Total:   last,
		Message: fmt.Sprintf("[%d/%d] Fetched page (%d concerts)", page, last, kept),
	}
}

func moderatedUpdate(step, total int, action Action, res ModerationResult) ProgressUpdate {
	if res.Error != nil {
		return ProgressUpdate{
			Phase:   Moderate,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s concert %d: %v", step, total, action, res.ConcertID, res.Error),
			Data:    res,
		}
	}
	return ProgressUpdate{
		Phase:   Moderate,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s concert %d", step, total, action, res.ConcertID),
		Data:    res,
	}
}

func draftUpdate(step, total int, res DraftResult) ProgressUpdate {
	label := draftLabel(res.Draft)
	if res.Error != nil {
		return ProgressUpdate{
			Phase:   RetryDraft,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, label, res.Error),
			Data:    res,
		}
	}
	return ProgressUpdate{
		Phase:   RetryDraft,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (concert %d)", step, total, label, res.Concert.ID),
		Data:    res,
	}
}

func draftLabel(d *models.ConcertDraft) string {
	if d.City == "" && d.Place == "" {
		return d.ID
	}
	return d.City + ", " + d.Place
}
