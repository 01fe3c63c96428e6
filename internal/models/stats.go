package models

// FlatStats is the dashboard summary for one flat.
// Archived complaints are excluded from every figure.
type FlatStats struct {
	ComplaintTypes     map[ComplaintType]int `json:"complaintTypes"`
	ActiveComplaints   int                   `json:"activeComplaints"`
	ResolvedComplaints int                   `json:"resolvedComplaints"`
	TotalFlatmates     int                   `json:"totalFlatmates"`
	ProblemOfWeek      *Complaint            `json:"problemOfWeek"`
}
