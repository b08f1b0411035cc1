package appointment

import (
	"context"

	domain "cherish/internal/domain/appointment"
)

// Store persists Appointment state on-device.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.Appointment, error)
	Save(ctx context.Context, value domain.Appointment) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Appointment, error)
}
