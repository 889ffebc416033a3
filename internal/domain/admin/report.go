package admin

import "time"

// Summary is the platform overview shown on the admin dashboard.
type Summary struct {
	GeneratedAt      time.Time        `json:"generated_at"`
	RequestsByStatus map[string]int64 `json:"requests_by_status"`
	TotalRequests    int64            `json:"total_requests"`
	Proposals        ProposalStats    `json:"proposals"`
	TopTechnicians   []TechnicianStat `json:"top_technicians"`
	UsersByRole      map[string]int64 `json:"users_by_role"`
}

type ProposalStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Accepted int64 `json:"accepted"`
	Rejected int64 `json:"rejected"`
}

type TechnicianStat struct {
	TechnicianID  int64   `json:"technician_id"`
	Name          string  `json:"name"`
	Completed     int64   `json:"completed"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int64   `json:"rating_count"`
}

// ExportRow is one line of the service request spreadsheet.
type ExportRow struct {
	ID             int64
	Status         string
	ClientName     string
	TechnicianName string
	Appliance      string
	Description    string
	ProposedAt     time.Time
	ScheduledAt    *time.Time
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

type ExportFilter struct {
	Status string
	From   *time.Time
	To     *time.Time
}

type ExpireResult struct {
	Expired int `json:"expired"`
}
