package models

// DashboardStats feeds the dashboard landing page.
type DashboardStats struct {
	TotalCustomers  int                      `json:"totalCustomers"`
	NewInquiries    int                      `json:"newInquiries"`
	ActivePrograms  int                      `json:"activePrograms"`
	RecentInquiries []map[string]interface{} `json:"recentInquiries"`
}

// UpdateStatusRequest moves an inquiry to another status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,inquiry_status"`
}
