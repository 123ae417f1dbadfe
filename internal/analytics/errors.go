package analytics

import "fmt"

// DataFormatError reports a record value the engine could not interpret,
// typically a calendar day that is not in YYYY-MM-DD form.
type DataFormatError struct {
	Field string
	Value string
	Err   error
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("malformed %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *DataFormatError) Unwrap() error {
	return e.Err
}
