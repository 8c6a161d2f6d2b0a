package api

import (
	"net/http"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/logging"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/services"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/store"
	"github.com/htech-wordpress/vibefit-studio-admin/pkg/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const recentInquiryCount = 5

type DashboardHandler struct {
	Services *services.Services
}

func NewDashboardHandler(svc *services.Services) *DashboardHandler {
	return &DashboardHandler{Services: svc}
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	var inquiries, programs []store.Record
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		inquiries, err = h.Services.Customers.FetchAll(ctx)
		return err
	})
	g.Go(func() (err error) {
		programs, err = h.Services.Programs.FetchAll(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		logging.Error().Err(err).Msg("Error loading dashboard stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, buildStats(inquiries, programs))
}

func buildStats(inquiries, programs []store.Record) models.DashboardStats {
	stats := models.DashboardStats{
		TotalCustomers:  len(inquiries),
		ActivePrograms:  len(programs),
		RecentInquiries: []map[string]interface{}{},
	}
	for i, rec := range inquiries {
		if rec.String("status") == services.StatusNew {
			stats.NewInquiries++
		}
		if i < recentInquiryCount {
			stats.RecentInquiries = append(stats.RecentInquiries, rec)
		}
	}
	return stats
}
