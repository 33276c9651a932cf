package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"auditflow/domain/template"
)

// twoCategoryTemplate builds a template with category weights 1 and 2, one
// item of weight 1 in each, pass threshold 70.
func twoCategoryTemplate() *template.Template {
	return &template.Template{
		ID:            "tpl-1",
		Name:          "Safety walk",
		PassThreshold: 70,
		Categories: []*template.Category{
			{
				ID:     "cat-1",
				Weight: 1,
				Items: []*template.ChecklistItem{
					{ID: "item-1", Title: "Exits clear", Weight: 1},
				},
			},
			{
				ID:     "cat-2",
				Weight: 2,
				Items: []*template.ChecklistItem{
					{ID: "item-2", Title: "Extinguishers charged", Weight: 1},
				},
			},
		},
	}
}

func TestComputeScore_AllPass(t *testing.T) {
	tpl := twoCategoryTemplate()
	results := ResultSet{
		"item-1": {ItemID: "item-1", Value: ResultPass},
		"item-2": {ItemID: "item-2", Value: ResultPass},
	}

	score := ComputeScore(tpl, results)

	assert.Equal(t, 3.0, score.TotalScore)
	assert.Equal(t, 3.0, score.MaxScore)
	assert.Equal(t, 100, score.PassPercentage)
	assert.True(t, score.Passed)
}

func TestComputeScore_HeavyCategoryFails(t *testing.T) {
	tpl := twoCategoryTemplate()
	results := ResultSet{
		"item-1": {ItemID: "item-1", Value: ResultPass},
		"item-2": {ItemID: "item-2", Value: ResultFail},
	}

	score := ComputeScore(tpl, results)

	assert.Equal(t, 1.0, score.TotalScore)
	assert.Equal(t, 3.0, score.MaxScore)
	assert.Equal(t, 33, score.PassPercentage)
	assert.False(t, score.Passed)
}

func TestComputeScore_NAExcludedFromBothAccumulators(t *testing.T) {
	tpl := twoCategoryTemplate()
	results := ResultSet{
		"item-1": {ItemID: "item-1", Value: ResultPass},
		"item-2": {ItemID: "item-2", Value: ResultNA},
	}

	score := ComputeScore(tpl, results)

	assert.Equal(t, 1.0, score.TotalScore)
	assert.Equal(t, 1.0, score.MaxScore)
	assert.Equal(t, 100, score.PassPercentage)
	assert.True(t, score.Passed)
}

func TestComputeScore_MissingResultTreatedAsNA(t *testing.T) {
	tpl := twoCategoryTemplate()
	results := ResultSet{
		"item-2": {ItemID: "item-2", Value: ResultPass},
	}

	score := ComputeScore(tpl, results)

	assert.Equal(t, 2.0, score.TotalScore)
	assert.Equal(t, 2.0, score.MaxScore)
	assert.Equal(t, 100, score.PassPercentage)
}

func TestComputeScore_NothingScorable(t *testing.T) {
	tests := []struct {
		name    string
		results ResultSet
	}{
		{name: "empty result set", results: ResultSet{}},
		{
			name: "all na",
			results: ResultSet{
				"item-1": {ItemID: "item-1", Value: ResultNA},
				"item-2": {ItemID: "item-2", Value: ResultNA},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := ComputeScore(twoCategoryTemplate(), tt.results)

			assert.Equal(t, 0.0, score.MaxScore)
			assert.Equal(t, 0, score.PassPercentage)
			assert.False(t, score.Passed, "an all-na submission must not pass")
		})
	}
}

func TestComputeScore_SoftDeletedExcluded(t *testing.T) {
	tpl := twoCategoryTemplate()
	tpl.Categories[1].Deleted = true
	tpl.Categories[0].Items = append(tpl.Categories[0].Items, &template.ChecklistItem{
		ID: "item-3", Title: "Retired check", Weight: 5, Deleted: true,
	})

	results := ResultSet{
		"item-1": {ItemID: "item-1", Value: ResultPass},
		"item-2": {ItemID: "item-2", Value: ResultFail},
		"item-3": {ItemID: "item-3", Value: ResultFail},
	}

	score := ComputeScore(tpl, results)

	// Only the surviving item-1 is scorable.
	assert.Equal(t, 1.0, score.TotalScore)
	assert.Equal(t, 1.0, score.MaxScore)
	assert.Equal(t, 100, score.PassPercentage)
}

func TestComputeScore_UnknownItemContributesNothing(t *testing.T) {
	tpl := twoCategoryTemplate()
	results := ResultSet{
		"item-1":  {ItemID: "item-1", Value: ResultPass},
		"item-2":  {ItemID: "item-2", Value: ResultPass},
		"deleted": {ItemID: "deleted", Value: ResultFail},
	}

	score := ComputeScore(tpl, results)

	assert.Equal(t, 3.0, score.TotalScore)
	assert.Equal(t, 3.0, score.MaxScore)
}

func TestComputeScore_ThresholdBoundary(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		pct       int
		passed    bool
	}{
		{name: "exactly at threshold", threshold: 33, pct: 33, passed: true},
		{name: "one below threshold", threshold: 34, pct: 33, passed: false},
		{name: "zero threshold", threshold: 0, pct: 33, passed: true},
	}

	results := ResultSet{
		"item-1": {ItemID: "item-1", Value: ResultPass},
		"item-2": {ItemID: "item-2", Value: ResultFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := twoCategoryTemplate()
			tpl.PassThreshold = tt.threshold

			score := ComputeScore(tpl, results)

			assert.Equal(t, tt.pct, score.PassPercentage)
			assert.Equal(t, tt.passed, score.Passed)
		})
	}
}

func TestComputeScore_RoundsHalfUp(t *testing.T) {
	// One of two equal items passes: 50%. Three equal items with one pass:
	// 33.33 -> 33. Two of three pass: 66.67 -> 67.
	tpl := &template.Template{
		ID:            "tpl-round",
		PassThreshold: 50,
		Categories: []*template.Category{
			{
				ID:     "cat-1",
				Weight: 1,
				Items: []*template.ChecklistItem{
					{ID: "a", Weight: 1},
					{ID: "b", Weight: 1},
					{ID: "c", Weight: 1},
				},
			},
		},
	}

	score := ComputeScore(tpl, ResultSet{
		"a": {ItemID: "a", Value: ResultPass},
		"b": {ItemID: "b", Value: ResultPass},
		"c": {ItemID: "c", Value: ResultFail},
	})
	assert.Equal(t, 67, score.PassPercentage)

	score = ComputeScore(tpl, ResultSet{
		"a": {ItemID: "a", Value: ResultPass},
		"b": {ItemID: "b", Value: ResultFail},
		"c": {ItemID: "c", Value: ResultFail},
	})
	assert.Equal(t, 33, score.PassPercentage)
}

func TestComputeScore_CollectsFlaggedFailures(t *testing.T) {
	tpl := twoCategoryTemplate()
	tpl.Categories[0].Items[0].CreatesActionOnFail = true
	tpl.Categories[1].Items[0].CreatesActionOnFail = true

	score := ComputeScore(tpl, ResultSet{
		"item-1": {ItemID: "item-1", Value: ResultFail},
		"item-2": {ItemID: "item-2", Value: ResultFail},
	})

	if assert.Len(t, score.FailedItemsNeedingAction, 2) {
		// Template order, not result-map order.
		assert.Equal(t, "item-1", score.FailedItemsNeedingAction[0].ID)
		assert.Equal(t, "item-2", score.FailedItemsNeedingAction[1].ID)
	}
}

func TestComputeScore_UnflaggedFailureNotCollected(t *testing.T) {
	tpl := twoCategoryTemplate()

	score := ComputeScore(tpl, ResultSet{
		"item-1": {ItemID: "item-1", Value: ResultFail},
	})

	assert.Empty(t, score.FailedItemsNeedingAction)
}

func TestComputeScore_FailToPassMonotonicity(t *testing.T) {
	tpl := twoCategoryTemplate()
	base := ResultSet{
		"item-1": {ItemID: "item-1", Value: ResultFail},
		"item-2": {ItemID: "item-2", Value: ResultFail},
	}
	before := ComputeScore(tpl, base)

	for itemID := range base {
		flipped := ResultSet{}
		for k, v := range base {
			flipped[k] = v
		}
		flipped[itemID] = Result{ItemID: itemID, Value: ResultPass}

		after := ComputeScore(tpl, flipped)
		assert.GreaterOrEqual(t, after.PassPercentage, before.PassPercentage,
			"flipping %s from fail to pass must not lower the percentage", itemID)
	}
}
