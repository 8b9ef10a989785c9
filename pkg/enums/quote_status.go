package enums

import "fmt"

// QuoteStatus tracks the lifecycle of a quote request.
type QuoteStatus string

const (
	QuoteStatusPending     QuoteStatus = "pending"
	QuoteStatusUnderReview QuoteStatus = "under_review"
	QuoteStatusPriced      QuoteStatus = "priced"
	QuoteStatusApproved    QuoteStatus = "approved"
	QuoteStatusRejected    QuoteStatus = "rejected"
	QuoteStatusConverted   QuoteStatus = "converted"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusPending,
	QuoteStatusUnderReview,
	QuoteStatusPriced,
	QuoteStatusApproved,
	QuoteStatusRejected,
	QuoteStatusConverted,
}

// String implements fmt.Stringer.
func (s QuoteStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known QuoteStatus.
func (s QuoteStatus) IsValid() bool {
	for _, candidate := range validQuoteStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status accepts no further writes.
func (s QuoteStatus) IsTerminal() bool {
	return s == QuoteStatusConverted
}

// ParseQuoteStatus converts raw input into a QuoteStatus.
func ParseQuoteStatus(value string) (QuoteStatus, error) {
	for _, candidate := range validQuoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote status %q", value)
}
