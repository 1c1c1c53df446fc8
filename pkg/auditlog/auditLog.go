package auditlog

import (
	"go.uber.org/zap"

	"garment/pkg/models"
)

type Persister interface {
	PersistLog(auditLog models.AuditLog, data interface{}) error
}

type Auditlog struct {
	r      Persister
	logger *zap.Logger
}

type Auditable interface {
	CreateLogView() models.AuditLog
}

// Log is meant to be called in its own goroutine. A nil Auditlog discards
// entries.
func (a *Auditlog) Log(action string, data interface{}, item Auditable) {
	if a == nil {
		return
	}

	auditLog := item.CreateLogView()
	auditLog.Action = action

	if err := a.r.PersistLog(auditLog, data); err != nil {
		a.logger.Error("Unable to create audit log entry",
			zap.String("resource_type", auditLog.ResourceType),
			zap.String("resource_id", auditLog.ResourceID),
			zap.Error(err),
		)
		return
	}

	a.logger.Debug("Created audit log entry",
		zap.String("resource_type", auditLog.ResourceType),
		zap.String("resource_id", auditLog.ResourceID),
		zap.String("action", action),
	)
}

func NewAuditLog(r Persister, logger *zap.Logger) *Auditlog {
	return &Auditlog{r: r, logger: logger}
}
