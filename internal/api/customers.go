package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/logging"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/services"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/store"
	"github.com/htech-wordpress/vibefit-studio-admin/pkg/models"

	"github.com/gin-gonic/gin"
)

// CustomerHandler serves website inquiries (the customer list of the panel).
type CustomerHandler struct {
	Customers *services.CustomerService
}

func NewCustomerHandler(svc *services.Services) *CustomerHandler {
	return &CustomerHandler{Customers: svc.Customers}
}

func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	customers, err := h.Customers.FetchAll(c.Request.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Error fetching customers")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customers"})
		return
	}

	c.JSON(http.StatusOK, filterCustomers(customers, c.Query("q")))
}

// filterCustomers keeps records whose name or email contains q (any case) or whose phone contains q.
func filterCustomers(customers []store.Record, q string) []store.Record {
	q = strings.TrimSpace(q)
	if q == "" {
		return customers
	}
	needle := strings.ToLower(q)
	out := []store.Record{}
	for _, rec := range customers {
		if strings.Contains(strings.ToLower(rec.String("name")), needle) ||
			strings.Contains(strings.ToLower(rec.String("email")), needle) ||
			strings.Contains(rec.String("phone"), q) {
			out = append(out, rec)
		}
	}
	return out
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	rec, err := h.Customers.FetchOne(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}
	if err != nil {
		logging.Error().Err(err).Str("id", c.Param("id")).Msg("Error fetching customer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customer"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *CustomerHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be one of " + strings.Join(services.InquiryStatuses, ", ")})
		return
	}

	err := h.Customers.Update(c.Request.Context(), c.Param("id"), store.Record{"status": req.Status})
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}
	if err != nil {
		logging.Error().Err(err).Str("id", c.Param("id")).Msg("Error updating customer status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update customer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Customer updated"})
}

func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	if err := h.Customers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		logging.Error().Err(err).Str("id", c.Param("id")).Msg("Error deleting customer")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete customer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Customer deleted"})
}

func (h *CustomerHandler) ExportCustomers(c *gin.Context) {
	customers, err := h.Customers.FetchAll(c.Request.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Error exporting customers")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export customers"})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=customers.csv")
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"Name", "Email", "Phone", "Program", "Status", "Created At"})
	for _, rec := range customers {
		_ = w.Write([]string{
			rec.String("name"),
			rec.String("email"),
			rec.String("phone"),
			rec.String("program"),
			rec.String("status"),
			csvTime(rec["createdAt"]),
		})
	}
	w.Flush()
}

// csvTime renders a stored timestamp; records imported without one get an empty cell.
func csvTime(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
