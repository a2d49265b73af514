package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/org-directory/internal/service"
)

// StartAuditWorker registers the audit subscriber. A nil service means
// auditing is disabled.
func StartAuditWorker(audit *service.AuditService, logger *zap.Logger) {
	if audit == nil {
		if logger != nil {
			logger.Info("audit log disabled")
		}
		return
	}
	audit.RegisterHandlers()
}
