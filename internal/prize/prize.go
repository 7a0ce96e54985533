// Package prize summarizes payments and deposits into a display-only prize pool.
package prize

// Status of a payment or deposit.
type Status string

const (
	Pending  Status = "pending"
	Approved Status = "approved"
	Rejected Status = "rejected"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case Pending, Approved, Rejected:
		return true
	}
	return false
}

// Entry is one payment or deposit. Amounts are in cents.
type Entry struct {
	AmountCents int64
	Status      Status
}

// Pool is the aggregate shown to users.
type Pool struct {
	ApprovedCents int64 `json:"approved_cents"`
	PendingCents  int64 `json:"pending_cents"`
	ApprovedCount int   `json:"approved_count"`
	PendingCount  int   `json:"pending_count"`
}

// TotalCents is approved plus pending.
func (p Pool) TotalCents() int64 {
	return p.ApprovedCents + p.PendingCents
}

// Summarize folds entries into a pool. Rejected entries do not count.
func Summarize(entries []Entry) Pool {
	var p Pool
	for _, e := range entries {
		switch e.Status {
		case Approved:
			p.ApprovedCents += e.AmountCents
			p.ApprovedCount++
		case Pending:
			p.PendingCents += e.AmountCents
			p.PendingCount++
		}
	}
	return p
}
