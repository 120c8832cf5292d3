package erezept

import (
	"strconv"
	"time"
)

// Status is the lifecycle state of a prescription. The set is closed;
// anything else is rejected by Validate.
type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusSigned    Status = "SIGNED"
	StatusDispensed Status = "DISPENSED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

var validStatuses = map[Status]bool{
	StatusCreated: true, StatusSigned: true, StatusDispensed: true,
	StatusCancelled: true, StatusExpired: true,
}

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	return validStatuses[s]
}

// Erezept maps to the erezept table (an electronic prescription with
// lifecycle metadata). The ID is assigned by the database on insert and is
// never accepted from callers for new records. PrescriptionID is the
// externally meaningful business key and is globally unique; the table
// carries a UNIQUE constraint as the source of truth for that invariant.
type Erezept struct {
	ID             int64      `db:"id" json:"id"`
	MedicationName string     `db:"medication_name" json:"medicationName"`
	Dosage         string     `db:"dosage" json:"dosage"`
	IssuedAt       time.Time  `db:"issued_at" json:"issuedAt"`
	ExpiresAt      *time.Time `db:"expires_at" json:"expiresAt,omitempty"`
	Status         Status     `db:"status" json:"status"`
	PatientID      string     `db:"patient_id" json:"patientId"`
	PractitionerID string     `db:"practitioner_id" json:"practitionerId"`
	PrescriptionID string     `db:"prescription_id" json:"prescriptionId"`
}

const (
	maxMedicationNameLen = 128
	maxDosageLen         = 256
	maxIdentifierLen     = 64
)

// Validate checks the field constraints of a prescription as supplied by a
// caller: non-blank strings with length limits, issuedAt not in the future,
// expiresAt (when set) not in the past, and a known status. It returns a
// Validation error carrying a field-to-message map, or nil.
func (e *Erezept) Validate(now time.Time) error {
	errs := map[string]string{}

	checkText(errs, "medicationName", e.MedicationName, maxMedicationNameLen)
	checkText(errs, "dosage", e.Dosage, maxDosageLen)
	checkText(errs, "patientId", e.PatientID, maxIdentifierLen)
	checkText(errs, "practitionerId", e.PractitionerID, maxIdentifierLen)
	checkText(errs, "prescriptionId", e.PrescriptionID, maxIdentifierLen)

	if e.IssuedAt.IsZero() {
		errs["issuedAt"] = "must not be null"
	} else if e.IssuedAt.After(now) {
		errs["issuedAt"] = "must be a date in the past or in the present"
	}
	if e.ExpiresAt != nil && e.ExpiresAt.Before(now) {
		errs["expiresAt"] = "must be a date in the present or in the future"
	}
	if e.Status != "" && !e.Status.Valid() {
		errs["status"] = "must be one of CREATED, SIGNED, DISPENSED, CANCELLED, EXPIRED"
	}

	if len(errs) > 0 {
		return validationError(errs)
	}
	return nil
}

func checkText(errs map[string]string, field, value string, max int) {
	switch {
	case value == "":
		errs[field] = "must not be blank"
	case len(value) > max:
		errs[field] = "length must be between 0 and " + strconv.Itoa(max)
	}
}
