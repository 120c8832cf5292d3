package erezept

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// -- Mock Repository --

type mockRepo struct {
	records map[int64]*Erezept
	nextID  int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[int64]*Erezept)}
}

func (m *mockRepo) Create(_ context.Context, e *Erezept) error {
	for _, r := range m.records {
		if r.PrescriptionID == e.PrescriptionID {
			return &pgconn.PgError{Code: "23505", ConstraintName: "erezept_prescription_id_key"}
		}
	}
	m.nextID++
	e.ID = m.nextID
	cp := *e
	m.records[e.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Erezept, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepo) GetByPrescriptionID(_ context.Context, key string) (*Erezept, error) {
	for _, r := range m.records {
		if r.PrescriptionID == key {
			cp := *r
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) ExistsByID(_ context.Context, id int64) (bool, error) {
	_, ok := m.records[id]
	return ok, nil
}

func (m *mockRepo) ExistsByPrescriptionID(_ context.Context, key string) (bool, error) {
	for _, r := range m.records {
		if r.PrescriptionID == key {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) Update(_ context.Context, e *Erezept) error {
	for _, r := range m.records {
		if r.PrescriptionID == e.PrescriptionID && r.ID != e.ID {
			return &pgconn.PgError{Code: "23505", ConstraintName: "erezept_prescription_id_key"}
		}
	}
	cp := *e
	m.records[e.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	delete(m.records, id)
	return nil
}

func (m *mockRepo) List(_ context.Context) ([]*Erezept, error) {
	result := []*Erezept{}
	for _, r := range m.records {
		cp := *r
		result = append(result, &cp)
	}
	return result, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo), repo
}

// -- Tests --

func TestService_Create(t *testing.T) {
	svc, _ := newTestService()

	e := validErezept()
	e.Status = ""
	created, err := svc.Create(context.Background(), e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected generated id")
	}
	if created.Status != StatusCreated {
		t.Errorf("expected default status CREATED, got %s", created.Status)
	}
}

func TestService_Create_DuplicateKeyLeavesStoreUnchanged(t *testing.T) {
	svc, repo := newTestService()

	first := validErezept()
	if _, err := svc.Create(context.Background(), first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := validErezept()
	_, err := svc.Create(context.Background(), second)
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(repo.records) != 1 {
		t.Errorf("expected store unchanged with 1 record, got %d", len(repo.records))
	}
}

func TestService_Create_UniqueViolationFromStore(t *testing.T) {
	// The pre-write existence check can race; a constraint violation from
	// the store must still surface as a conflict.
	repo := newMockRepo()
	svc := NewService(repo)

	seed := validErezept()
	repo.Create(context.Background(), seed)

	dup := validErezept()
	dup.ID = 0
	err := repo.Create(context.Background(), dup)
	if !isUniqueViolation(err) {
		t.Fatalf("expected unique violation from store, got %v", err)
	}

	_, err = svc.Save(context.Background(), dup)
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict from save, got %v", err)
	}
}

func TestService_GetByID_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetByID(context.Background(), 42)
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_GetByPrescriptionID(t *testing.T) {
	svc, _ := newTestService()

	created, _ := svc.Create(context.Background(), validErezept())
	got, err := svc.GetByPrescriptionID(context.Background(), created.PrescriptionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("expected id %d, got %d", created.ID, got.ID)
	}

	_, err = svc.GetByPrescriptionID(context.Background(), "RX-MISSING")
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_Update_AppliesMutableFieldsOnly(t *testing.T) {
	svc, _ := newTestService()

	created, _ := svc.Create(context.Background(), validErezept())
	origIssued := created.IssuedAt

	exp := time.Now().Add(24 * time.Hour)
	patch := &Erezept{
		MedicationName: "Paracetamol 500mg",
		Dosage:         "0-0-1",
		ExpiresAt:      &exp,
		Status:         StatusSigned,
		IssuedAt:       time.Now(),
		PrescriptionID: "RX-OTHER",
		PatientID:      "patient-other",
	}
	updated, err := svc.Update(context.Background(), created.ID, patch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.MedicationName != "Paracetamol 500mg" || updated.Status != StatusSigned {
		t.Error("expected mutable fields applied")
	}
	if !updated.IssuedAt.Equal(origIssued) {
		t.Error("expected issuedAt preserved")
	}
	if updated.PrescriptionID != created.PrescriptionID {
		t.Error("expected prescriptionId preserved")
	}
	if updated.PatientID != created.PatientID {
		t.Error("expected patientId preserved")
	}
}

func TestService_Update_NotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Update(context.Background(), 99, validErezept())
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_Update_EmptyStatusKeepsCurrent(t *testing.T) {
	svc, _ := newTestService()

	created, _ := svc.Create(context.Background(), validErezept())
	patch := validErezept()
	patch.Status = ""

	updated, err := svc.Update(context.Background(), created.ID, patch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusCreated {
		t.Errorf("expected status preserved, got %s", updated.Status)
	}
}

func TestService_DeleteIfExists_Idempotent(t *testing.T) {
	svc, _ := newTestService()

	created, _ := svc.Create(context.Background(), validErezept())

	deleted, err := svc.DeleteIfExists(context.Background(), created.ID)
	if err != nil || !deleted {
		t.Fatalf("expected first delete to succeed, got %v %v", deleted, err)
	}

	deleted, err = svc.DeleteIfExists(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted {
		t.Error("expected second delete to report false")
	}
}

func TestService_ExistsByPrescriptionID_EmptyKey(t *testing.T) {
	svc, _ := newTestService()

	exists, err := svc.ExistsByPrescriptionID(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected empty key to report false")
	}
}

func TestService_List_Empty(t *testing.T) {
	svc, _ := newTestService()

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty slice, got %v", items)
	}
}
