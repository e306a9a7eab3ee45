package activitylog

import (
	"context"

	"smartoffice-console/models"
)

// BackendLister is the backend call that returns the activity log.
type BackendLister interface {
	ListLogs(ctx context.Context, token string) ([]models.ActivityLogEntry, error)
}

// BackendSource reads the log through the REST backend with the viewer's token.
type BackendSource struct {
	Backend BackendLister
	Token   string
}

func (s BackendSource) List(ctx context.Context) ([]models.ActivityLogEntry, error) {
	return s.Backend.ListLogs(ctx, s.Token)
}
