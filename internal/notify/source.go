package notify

import (
	"context"
	"errors"

	"github.com/DanielAnoka/EMS-sub000/internal/domain"
)

// Source defines the interface to the remote notification system, the
// sole authority for the read flag once a commit succeeds
// Consumers define this interface, not the HTTP implementation
type Source interface {
	Fetch(ctx context.Context, identity string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

var ErrCommitFailed = errors.New("read-state commit failed")
