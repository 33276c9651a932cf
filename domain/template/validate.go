package template

import "fmt"

// ValidationError describes a malformed template or rule input. Validation
// errors are reported per entity and never abort processing of siblings.
type ValidationError struct {
	Entity  string // Entity kind, e.g. "template", "category", "item"
	ID      string // Identifier of the offending entity
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %s: %s", e.Entity, e.ID, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Entity, e.Field, e.Message)
}

// Validate checks template structure before it is accepted for scoring or
// persistence. All violations are returned, not just the first.
func (t *Template) Validate() []error {
	var errs []error

	if t.PassThreshold < 0 || t.PassThreshold > 100 {
		errs = append(errs, &ValidationError{
			Entity: "template", ID: t.ID, Field: "pass_threshold",
			Message: fmt.Sprintf("must be between 0 and 100, got %d", t.PassThreshold),
		})
	}

	for _, cat := range t.Categories {
		if cat.Weight <= 0 {
			errs = append(errs, &ValidationError{
				Entity: "category", ID: cat.ID, Field: "weight",
				Message: fmt.Sprintf("must be positive, got %g", cat.Weight),
			})
		}
		for _, item := range cat.Items {
			if item.Weight <= 0 {
				errs = append(errs, &ValidationError{
					Entity: "item", ID: item.ID, Field: "weight",
					Message: fmt.Sprintf("must be positive, got %g", item.Weight),
				})
			}
			if item.CreatesActionOnFail {
				if !item.ActionUrgency.IsValid() {
					errs = append(errs, &ValidationError{
						Entity: "item", ID: item.ID, Field: "action_urgency",
						Message: fmt.Sprintf("unknown urgency %q", item.ActionUrgency),
					})
				}
				if item.ActionDeadlineDays <= 0 {
					errs = append(errs, &ValidationError{
						Entity: "item", ID: item.ID, Field: "action_deadline_days",
						Message: fmt.Sprintf("must be positive, got %d", item.ActionDeadlineDays),
					})
				}
			}
		}
	}

	return errs
}
