package pipeline

import (
	"fmt"

	"github.com/couchcryptid/nabr-climate-report/internal/domain"
)

// Annotate concatenates the historical and near-term tables and labels every
// classifiable row. Thresholds are computed from the unified table unless th
// is given. It has no side effects and is safe to call from every page.
func Annotate(historic, nearTerm []domain.Observation, center domain.Location, th *domain.Thresholds) (domain.AnnotatedTable, error) {
	obs := make([]domain.Observation, 0, len(historic)+len(nearTerm))
	obs = append(obs, historic...)
	obs = append(obs, nearTerm...)
	if len(obs) == 0 {
		return domain.AnnotatedTable{}, fmt.Errorf("annotate: %w", domain.ErrNoObservations)
	}

	var thresholds domain.Thresholds
	if th != nil {
		thresholds = *th
	} else {
		var err error
		thresholds, err = domain.ComputeThresholds(obs)
		if err != nil {
			return domain.AnnotatedTable{}, fmt.Errorf("annotate: %w", err)
		}
	}

	table := domain.AnnotatedTable{
		Observations: obs,
		Classified:   make([]domain.AnnotatedObservation, 0, len(obs)),
		Thresholds:   thresholds,
		Center:       center,
	}
	for _, o := range obs {
		row, ok := domain.Label(o, thresholds, center)
		if !ok {
			table.Dropped++
			continue
		}
		if row.Branch == domain.BranchFallback {
			table.Fallback++
		}
		table.Classified = append(table.Classified, row)
	}
	return table, nil
}
