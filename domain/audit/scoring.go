package audit

import (
	"math"

	"auditflow/domain/template"
	"auditflow/logging"
)

// Score is the output of the weighted scoring computation.
type Score struct {
	TotalScore     float64
	MaxScore       float64
	PassPercentage int
	Passed         bool

	// FailedItemsNeedingAction lists failed items flagged with
	// CreatesActionOnFail, in template order, for the action factory.
	FailedItemsNeedingAction []*template.ChecklistItem
}

// ComputeScore walks the template's category/item tree and folds the result
// set into a weighted score.
//
// Rules:
//   - contribution = category.Weight * item.Weight
//   - pass adds the contribution to both total and max
//   - fail adds the contribution to max only
//   - na or missing results add nothing to either accumulator
//   - soft-deleted categories and items are skipped entirely
//
// The percentage is total/max*100 rounded half-up. A template where nothing
// is scorable (max == 0) yields percentage 0 and passed=false; an all-na
// submission deliberately does not pass.
//
// Result entries referencing items absent from the template graph contribute
// nothing. Historical audits may carry results for since-deleted items, so
// this is logged rather than treated as an error.
func ComputeScore(tpl *template.Template, results ResultSet) Score {
	score := Score{}

	seen := make(map[string]bool, len(results))
	for _, cat := range tpl.Categories {
		if cat.Deleted {
			continue
		}
		for _, item := range cat.Items {
			if item.Deleted {
				continue
			}
			seen[item.ID] = true

			res, ok := results[item.ID]
			if !ok || res.Value == ResultNA {
				continue
			}

			contribution := cat.Weight * item.Weight
			switch res.Value {
			case ResultPass:
				score.TotalScore += contribution
				score.MaxScore += contribution
			case ResultFail:
				score.MaxScore += contribution
				if item.CreatesActionOnFail {
					score.FailedItemsNeedingAction = append(score.FailedItemsNeedingAction, item)
				}
			}
		}
	}

	for itemID := range results {
		if !seen[itemID] {
			logging.Default().Scoring("result references unknown or deleted item",
				"template_id", tpl.ID,
				"item_id", itemID)
		}
	}

	if score.MaxScore > 0 {
		score.PassPercentage = roundHalfUp(score.TotalScore / score.MaxScore * 100)
	}
	score.Passed = score.MaxScore > 0 && score.PassPercentage >= tpl.PassThreshold

	return score
}

// roundHalfUp rounds to the nearest integer with ties going up.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
