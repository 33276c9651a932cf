// Package template defines checklist template aggregates: a template owns an
// ordered list of weighted categories, each owning weighted checklist items.
package template

import "time"

// Urgency is the priority assigned to a corrective action generated from a
// failed checklist item.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// String returns the string representation of the urgency.
func (u Urgency) String() string {
	return string(u)
}

// IsValid returns true if the urgency is a recognized value.
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// Template defines the structure of an audit: pass threshold plus the
// weighted category/item tree that the scoring engine walks.
type Template struct {
	ID            string
	Name          string
	PassThreshold int  // Applied to the weighted pass percentage, 0-100
	RequirePhotos bool // Default photo requirement for new items
	Categories    []*Category
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Category groups checklist items under a shared weight multiplier.
// Soft-deleted categories stay in the graph for historical audits but are
// excluded from scoring.
type Category struct {
	ID      string
	Name    string
	Weight  float64
	Deleted bool
	Items   []*ChecklistItem
}

// ChecklistItem is a single auditable question. Its effective contribution
// to the template's maximum score is category.Weight * item.Weight.
type ChecklistItem struct {
	ID                    string
	Title                 string
	Weight                float64
	Deleted               bool
	RequiresPhoto         bool
	RequiresCommentOnFail bool
	CreatesActionOnFail   bool
	ActionUrgency         Urgency
	ActionDeadlineDays    int
}

// FindItem returns the item with the given ID and its parent category, or
// nils when the ID is not part of this template.
func (t *Template) FindItem(itemID string) (*Category, *ChecklistItem) {
	for _, cat := range t.Categories {
		for _, item := range cat.Items {
			if item.ID == itemID {
				return cat, item
			}
		}
	}
	return nil, nil
}

// ActiveItemCount returns the number of scorable items: items that are not
// soft-deleted and whose category is not soft-deleted.
func (t *Template) ActiveItemCount() int {
	count := 0
	for _, cat := range t.Categories {
		if cat.Deleted {
			continue
		}
		for _, item := range cat.Items {
			if !item.Deleted {
				count++
			}
		}
	}
	return count
}
