package audit

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/readinglog/internal/database/audit"
	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/log"
)

const maxFieldLen = 500

// Service provides high-level audit logging functionality. A nil *Service
// is valid and records nothing.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	if s == nil {
		return nil
	}
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	if s == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Warn("Failed to log audit event",
				zap.String("action", event.Action),
				zap.Error(err))
		}
	}()
}

// Wait blocks until every event queued by LogAsync has been written.
func (s *Service) Wait() {
	if s == nil {
		return
	}
	s.pending.Wait()
}

// LogBook records a book mutation. A nil book is allowed for actions on
// IDs that did not resolve.
func (s *Service) LogBook(userID uint, action string, bookID uint, book *entities.Book, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventBook,
		Action:      action,
		Description: describeBook(action, bookID, book),
		EntityType:  "book",
		EntityID:    &bookID,
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), maxFieldLen)
	}

	s.LogAsync(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action string, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		UserID:     userID,
		EventType:  entities.AuditEventAuth,
		Action:     action,
		EntityType: "user",
		IPAddress:  ipAddr,
		UserAgent:  truncate(userAgent, maxFieldLen),
		Status:     entities.AuditStatusSuccess,
	}

	if userID > 0 {
		id := userID
		event.EntityID = &id
	}
	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(userID, limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(eventType entities.AuditEventType, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(eventType, userID, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

var bookVerbs = map[string]string{
	entities.AuditActionBookCreate: "Added",
	entities.AuditActionBookUpdate: "Updated",
	entities.AuditActionBookUpsert: "Added (via update)",
	entities.AuditActionBookDelete: "Deleted",
	entities.AuditActionBookStart:  "Started",
	entities.AuditActionBookFinish: "Finished",
}

func describeBook(action string, bookID uint, book *entities.Book) string {
	verb, ok := bookVerbs[action]
	if !ok {
		verb = action
	}
	if book == nil {
		return fmt.Sprintf("%s book #%d", verb, bookID)
	}
	return truncate(fmt.Sprintf("%s %q by %s", verb, book.Title, book.Author), maxFieldLen)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
