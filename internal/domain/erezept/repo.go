package erezept

import "context"

// Repository is the persistence contract for prescriptions. Create assigns
// the generated identifier onto the passed record. GetByID and
// GetByPrescriptionID return pgx.ErrNoRows-wrapped errors when no row
// matches; the service translates those into NotFound.
type Repository interface {
	Create(ctx context.Context, e *Erezept) error
	GetByID(ctx context.Context, id int64) (*Erezept, error)
	GetByPrescriptionID(ctx context.Context, prescriptionID string) (*Erezept, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByPrescriptionID(ctx context.Context, prescriptionID string) (bool, error)
	Update(ctx context.Context, e *Erezept) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*Erezept, error)
}
