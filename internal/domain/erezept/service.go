package erezept

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Service mediates all prescription mutations and enforces the uniqueness
// of the prescriptionId business key. The pre-write existence check is a
// fast path; the table's UNIQUE constraint remains the source of truth, so
// a racing duplicate insert still surfaces as a Conflict.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all prescriptions, possibly an empty slice.
func (s *Service) List(ctx context.Context) ([]*Erezept, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list erezept: %w", err)
	}
	return items, nil
}

// GetByID returns the prescription with the given database identifier.
func (s *Service) GetByID(ctx context.Context, id int64) (*Erezept, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("ERezept with id=%d not found", id)
		}
		return nil, fmt.Errorf("get erezept by id: %w", err)
	}
	return e, nil
}

// GetByPrescriptionID returns the prescription with the given business key.
func (s *Service) GetByPrescriptionID(ctx context.Context, prescriptionID string) (*Erezept, error) {
	e, err := s.repo.GetByPrescriptionID(ctx, prescriptionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("ERezept with prescriptionId=%s not found", prescriptionID)
		}
		return nil, fmt.Errorf("get erezept by prescription id: %w", err)
	}
	return e, nil
}

// Create stores a new prescription when its business key is unused and
// returns the record with the generated identifier. A duplicate key yields
// a Conflict and no write. An unset status defaults to CREATED.
func (s *Service) Create(ctx context.Context, e *Erezept) (*Erezept, error) {
	if e.PrescriptionID != "" {
		exists, err := s.ExistsByPrescriptionID(ctx, e.PrescriptionID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, conflictf("ERezept with prescriptionId=%s already exists", e.PrescriptionID)
		}
	}
	if e.Status == "" {
		e.Status = StatusCreated
	}
	e.ID = 0
	if err := s.repo.Create(ctx, e); err != nil {
		if isUniqueViolation(err) {
			return nil, conflictf("ERezept with prescriptionId=%s already exists", e.PrescriptionID)
		}
		return nil, fmt.Errorf("create erezept: %w", err)
	}
	return e, nil
}

// Update applies the mutable field set of patch (medicationName, dosage,
// expiresAt, status) onto the stored record; issuedAt, prescriptionId,
// patientId and practitionerId are preserved. A missing record yields
// NotFound. An empty patch status keeps the current one.
func (s *Service) Update(ctx context.Context, id int64, patch *Erezept) (*Erezept, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.MedicationName = patch.MedicationName
	existing.Dosage = patch.Dosage
	existing.ExpiresAt = patch.ExpiresAt
	if patch.Status != "" {
		existing.Status = patch.Status
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("update erezept: %w", err)
	}
	return existing, nil
}

// Save persists the given record unconditionally. The realtime transport
// uses it after running its own existence and uniqueness checks.
func (s *Service) Save(ctx context.Context, e *Erezept) (*Erezept, error) {
	if e.ID == 0 {
		if err := s.repo.Create(ctx, e); err != nil {
			if isUniqueViolation(err) {
				return nil, conflictf("ERezept with prescriptionId=%s already exists", e.PrescriptionID)
			}
			return nil, fmt.Errorf("save erezept: %w", err)
		}
		return e, nil
	}
	if err := s.repo.Update(ctx, e); err != nil {
		if isUniqueViolation(err) {
			return nil, conflictf("ERezept with prescriptionId=%s already exists", e.PrescriptionID)
		}
		return nil, fmt.Errorf("save erezept: %w", err)
	}
	return e, nil
}

// DeleteIfExists removes the record when present and reports whether a
// delete happened. Deleting an absent id is not an error.
func (s *Service) DeleteIfExists(ctx context.Context, id int64) (bool, error) {
	exists, err := s.ExistsByID(ctx, id)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return false, fmt.Errorf("delete erezept: %w", err)
	}
	return true, nil
}

// ExistsByID reports whether a record with the given identifier exists.
func (s *Service) ExistsByID(ctx context.Context, id int64) (bool, error) {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("exists erezept by id: %w", err)
	}
	return exists, nil
}

// ExistsByPrescriptionID reports whether the business key is taken. An
// empty key always reports false.
func (s *Service) ExistsByPrescriptionID(ctx context.Context, prescriptionID string) (bool, error) {
	if prescriptionID == "" {
		return false, nil
	}
	exists, err := s.repo.ExistsByPrescriptionID(ctx, prescriptionID)
	if err != nil {
		return false, fmt.Errorf("exists erezept by prescription id: %w", err)
	}
	return exists, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
