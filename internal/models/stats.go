package models

type DashboardStats struct {
	TotalUsers    int64 `json:"total_users"`
	ActiveToday   int64 `json:"active_today"`
	PointsIssued  int64 `json:"points_issued"`
	PointsSpent   int64 `json:"points_spent"`
	TotalPulls    int64 `json:"total_pulls"`
	TotalSessions int64 `json:"total_sessions"`
	Degraded      bool  `json:"degraded"`
}
