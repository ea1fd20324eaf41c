package model

// CreditBalance is the last known remaining-credits snapshot.
// Authenticated is false whenever no credential exists or the most recent
// lookup did not succeed.
type CreditBalance struct {
	Credits       int  `json:"credits"`
	Authenticated bool `json:"authenticated"`
}

// CreditLookup is the remote credits endpoint payload.
type CreditLookup struct {
	Credits int
	Email   string
}
