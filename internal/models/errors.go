package models

import "errors"

var (
	// ErrDuplicateID is returned when a record with the same external
	// identifier already exists. The existing record is left untouched.
	ErrDuplicateID = errors.New("duplicate record identifier")

	ErrRecordNotFound = errors.New("record not found")
	ErrAlertNotFound  = errors.New("alert not found")

	ErrInvalidScore      = errors.New("sentiment score out of range [1,5]")
	ErrInvalidConfidence = errors.New("sentiment confidence out of range [0,1]")
)
