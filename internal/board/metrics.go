package board

import (
	"strings"

	"github.com/nhle/taskboard/internal/model"
)

// Capacity limits enforced by the Controller.
const (
	// MaxColumns is the maximum number of columns per project.
	MaxColumns = 15

	// MaxTasks is the maximum number of cards across the whole board.
	MaxTasks = 500
)

// completedStatusCode is the numeric workflow status at or above which a
// column counts as completed.
const completedStatusCode = 5

// completionKeywords are the column labels/stages that mark a column as
// holding completed work. Matching is case-insensitive.
var completionKeywords = map[string]struct{}{
	"done":      {},
	"complete":  {},
	"completed": {},
	"deployed":  {},
	"approved":  {},
}

// Metrics are the rollups derived from a board snapshot.
type Metrics struct {
	TotalTasks        int
	RemainingCapacity int
	Completed         int
	InProgress        int
}

// DeriveMetrics computes the rollups for a snapshot.
//
// Completion is classified in two modes. If any column carries completion
// semantics (label/stage keyword match, or numeric status >= 5), completed
// work is the union of all qualifying columns' cards. Boards without such
// a column fall back to per-card signals: an explicit completed flag,
// progress >= 100, or a non-empty checklist with every item done.
func DeriveMetrics(b *model.Board) Metrics {
	m := Metrics{}
	if b == nil {
		m.RemainingCapacity = MaxTasks
		return m
	}

	m.TotalTasks = b.CardCount()
	m.RemainingCapacity = MaxTasks - m.TotalTasks
	if m.RemainingCapacity < 0 {
		m.RemainingCapacity = 0
	}

	columnDriven := false
	for i := range b.Columns {
		if isCompletedColumn(b.Columns[i]) {
			columnDriven = true
			m.Completed += len(b.Columns[i].Cards)
		}
	}

	if !columnDriven {
		for i := range b.Columns {
			for j := range b.Columns[i].Cards {
				if isCompletedCard(b.Columns[i].Cards[j]) {
					m.Completed++
				}
			}
		}
	}

	m.InProgress = m.TotalTasks - m.Completed
	return m
}

// isCompletedColumn reports whether the column itself marks its cards as
// completed work.
func isCompletedColumn(col model.Column) bool {
	if matchesCompletionKeyword(col.DisplayLabel) {
		return true
	}
	if matchesCompletionKeyword(col.Stage) {
		return true
	}
	return col.StatusCode >= completedStatusCode
}

// isCompletedCard is the per-card fallback for boards without a
// completion column.
func isCompletedCard(card model.Card) bool {
	if card.Completed {
		return true
	}
	if card.Progress >= 100 {
		return true
	}
	done, total := card.ChecklistProgress()
	return total > 0 && done == total
}

func matchesCompletionKeyword(label string) bool {
	_, ok := completionKeywords[strings.ToLower(strings.TrimSpace(label))]
	return ok
}

// metricsCache memoizes DeriveMetrics keyed by snapshot identity, so the
// rollups are computed once per Replace rather than per read.
type metricsCache struct {
	last   *model.Board
	cached Metrics
}

func (mc *metricsCache) get(b *model.Board) Metrics {
	if b != nil && b == mc.last {
		return mc.cached
	}
	mc.last = b
	mc.cached = DeriveMetrics(b)
	return mc.cached
}
