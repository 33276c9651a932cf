package action

import (
	"fmt"
	"time"

	"auditflow/domain/audit"
	"auditflow/domain/template"

	"github.com/google/uuid"
)

// Factory converts failed checklist items into pending action records.
type Factory struct {
	newID func() string
}

// NewFactory creates an action factory using UUIDs for action identifiers.
func NewFactory() *Factory {
	return &Factory{newID: uuid.NewString}
}

// BuildActions creates one pending action per flagged failed item.
//
// The deadline is the audit completion date plus the item's configured
// deadline in days. Items whose IDs appear in existingItemIDs are skipped,
// which makes re-running audit completion idempotent: exactly one action per
// qualifying failed item per audit. The storage layer additionally enforces
// this with a uniqueness constraint on (audit_id, item_id).
func (f *Factory) BuildActions(a *audit.Audit, failed []*template.ChecklistItem, existingItemIDs map[string]bool) []*Action {
	if len(failed) == 0 {
		return nil
	}

	completedAt := time.Now()
	if a.CompletedAt != nil {
		completedAt = *a.CompletedAt
	}

	actions := make([]*Action, 0, len(failed))
	for _, item := range failed {
		if existingItemIDs[item.ID] {
			continue
		}

		urgency := item.ActionUrgency
		if !urgency.IsValid() {
			urgency = template.UrgencyMedium
		}
		deadlineDays := item.ActionDeadlineDays
		if deadlineDays <= 0 {
			deadlineDays = 7
		}

		desc := fmt.Sprintf("Corrective action for failed checklist item %q", item.Title)
		if res, ok := a.Results[item.ID]; ok && res.Comment != "" {
			desc = fmt.Sprintf("%s. Inspector comment: %s", desc, res.Comment)
		}

		actions = append(actions, &Action{
			ID:                    f.newID(),
			AuditID:               a.ID,
			ItemID:                item.ID,
			LocationID:            a.LocationID,
			Title:                 fmt.Sprintf("Fix: %s", item.Title),
			Description:           desc,
			Status:                StatusPending,
			Urgency:               urgency,
			Deadline:              completedAt.AddDate(0, 0, deadlineDays),
			RequiresPhoto:         item.RequiresPhoto,
			RequiresCommentOnFail: item.RequiresCommentOnFail,
			CreatedAt:             completedAt,
		})
	}

	return actions
}
