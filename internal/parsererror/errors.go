package parsererror

import "fmt"

// DocumentOpenError means the file could not be opened or read as a PDF.
type DocumentOpenError struct {
	Path string
	Err  error
}

func (e *DocumentOpenError) Error() string {
	return fmt.Sprintf("cannot open document '%s': %v", e.Path, e.Err)
}

func (e *DocumentOpenError) Unwrap() error {
	return e.Err
}

// UnknownBankError means no strategy is registered for the bank code.
type UnknownBankError struct {
	Code string
}

func (e *UnknownBankError) Error() string {
	return fmt.Sprintf("unknown bank code '%s'", e.Code)
}
