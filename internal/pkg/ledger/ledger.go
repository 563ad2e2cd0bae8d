package ledger

import (
	"errors"
	"log"
	"time"

	"github.com/MarvinHoffmann/DropGate/app/models"
	"github.com/MarvinHoffmann/DropGate/app/repository"
	"github.com/MarvinHoffmann/DropGate/internal/pkg/apperr"
	"gorm.io/gorm"
)

// FreshnessWindow is how long a successful provider outcome stays valid
// before a re-check is required. Most provider write endpoints are capped at
// roughly 5 requests per 15 minutes; two hours keeps a flood of UI checks
// from ever re-calling the provider inside the window.
const FreshnessWindow = 2 * time.Hour

// CheckResult is the outcome of an idempotency lookup.
type CheckResult struct {
	// Status is true when a prior successful outcome is still fresh and the
	// upstream call can be skipped.
	Status   bool   `json:"status"`
	TargetID string `json:"related_target_id"`
	Message  string `json:"message"`
}

// RecordInput describes one provider attempt to persist.
type RecordInput struct {
	ActorID        string
	TargetID       string
	ActionType     string
	EndpointURL    string
	RequestPayload string
	ResponseText   string
	ErrorText      string
}

// Service is the interaction ledger: the audit stream plus the per-user
// current-state records that back idempotency and completion queries.
type Service struct {
	audit   repository.ActionLogRepository
	records repository.UserActionRepository
}

// NewService creates a ledger service from injected repositories.
func NewService(audit repository.ActionLogRepository, records repository.UserActionRepository) *Service {
	return &Service{audit: audit, records: records}
}

// NewServiceFromRepositories creates a ledger service from the repository set.
func NewServiceFromRepositories(repos *repository.Repositories) *Service {
	return NewService(repos.ActionLog, repos.UserAction)
}

// Record persists one attempt. The audit append never fails the caller's
// flow: an audit write failure is logged as a warning and the primary outcome
// still counts. The per-user record is only written when a target is present.
func (s *Service) Record(in RecordInput) error {
	if in.ActorID == "" || in.ActionType == "" {
		return apperr.InvalidInput("actor id and action type are required")
	}

	entry := models.NewActionLog(in.ActorID, in.TargetID, in.ActionType, in.EndpointURL)
	entry.RequestPayload = in.RequestPayload
	entry.ResponseText = in.ResponseText
	entry.ErrorText = in.ErrorText
	if err := s.audit.Create(entry); err != nil {
		log.Printf("warning: audit write failed for actor %s action %s: %v", in.ActorID, in.ActionType, err)
	}

	if in.TargetID == "" {
		return nil
	}

	record := &models.UserActionRecord{
		ActorID:      in.ActorID,
		TargetID:     in.TargetID,
		ActionType:   in.ActionType,
		EndpointURL:  in.EndpointURL,
		ResponseText: in.ResponseText,
		ErrorText:    in.ErrorText,
	}
	if err := s.records.Upsert(record); err != nil {
		return apperr.StorageUnavailable("persisting interaction record failed", err)
	}
	return nil
}

// CheckInteraction decides whether a prior successful check is still valid
// for the (actor, target, action) key, or whether the caller must re-verify
// against the provider. Passing an empty target addresses the actor's most
// recent record of that action type.
func (s *Service) CheckInteraction(actorID, actionType, targetID string) (*CheckResult, error) {
	if actorID == "" || actionType == "" {
		return nil, apperr.InvalidInput("actor id and action type are required")
	}

	record, err := s.records.GetByKey(actorID, targetID, actionType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CheckResult{Status: false, Message: "no interaction found"}, nil
		}
		return nil, apperr.StorageUnavailable("interaction lookup failed", err)
	}

	if record.Failed() {
		// A terminal failure must not sit in current state indefinitely;
		// surface it instead of pretending the actor never interacted.
		return nil, apperr.InteractionCheck("stored interaction holds a failed attempt", nil)
	}
	if !record.Succeeded() {
		return &CheckResult{Status: false, Message: "no interaction found"}, nil
	}

	// Exactly at the window boundary counts as stale.
	if time.Since(record.CreatedAt) < FreshnessWindow {
		return &CheckResult{Status: true, TargetID: record.TargetID, Message: "interaction already verified"}, nil
	}
	return &CheckResult{Status: false, TargetID: record.TargetID, Message: "interaction stale, re-check required"}, nil
}
