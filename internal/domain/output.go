package domain

// Status values shared by all connectors.
const (
	StatusSuccess     = "Success"
	StatusNoDocuments = "No documents found"
)

// Output is the single (value, status) pair every connector hands back to the host.
// On failure Value holds the same descriptive message as Status.
type Output struct {
	Value  any    `json:"value"`
	Status string `json:"status"`
}

// Success builds an Output whose status reflects whether value holds anything.
func Success(value any, empty bool) Output {
	if empty {
		return Output{Value: value, Status: StatusNoDocuments}
	}
	return Output{Value: value, Status: StatusSuccess}
}

// Failure builds an Output carrying the message as both value and status.
func Failure(msg string) Output {
	return Output{Value: msg, Status: msg}
}

// Failed reports whether the output carries a failure message.
func (o Output) Failed() bool {
	return o.Status != StatusSuccess && o.Status != StatusNoDocuments
}
