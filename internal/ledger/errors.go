package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrAlreadyFrozen  = errors.New("budget is already frozen")
	ErrNotFrozen      = errors.New("budget is not frozen")
	ErrDuplicateGlAcc = errors.New("GL account number already exists for this farm")
)

// InvalidCategoryError rejects an edit to an unknown or non-leaf category.
type InvalidCategoryError struct {
	Code   string
	Reason string
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("invalid category %q: %s", e.Code, e.Reason)
}

const (
	reasonUnknown = "unknown category code"
	reasonParent  = "cannot edit parent category directly"
)

// AssumptionNotFoundError means no assumption row exists for the farm and year.
type AssumptionNotFoundError struct {
	FiscalYear int
}

func (e *AssumptionNotFoundError) Error() string {
	return fmt.Sprintf("no assumptions found for fiscal year %d", e.FiscalYear)
}

func (e *AssumptionNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type LockReason string

const (
	LockedActual LockReason = "actual"
	LockedFrozen LockReason = "frozen"
)

// LockedMonthError rejects a cell edit on an actual or frozen month.
type LockedMonthError struct {
	Month  string
	Type   RecordType
	Reason LockReason
}

func (e *LockedMonthError) Error() string {
	if e.Reason == LockedFrozen {
		return fmt.Sprintf("cannot edit %s: budget is frozen, unfreeze to edit", e.Month)
	}
	return fmt.Sprintf("cannot edit actual data: %s is locked", e.Month)
}

// DuplicateCategoryCodeError is returned when a code is already taken on the farm.
type DuplicateCategoryCodeError struct {
	Code string
}

func (e *DuplicateCategoryCodeError) Error() string {
	return fmt.Sprintf("category code %q already exists for this farm", e.Code)
}
