package api

import (
	"sync"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/services"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by request models.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("inquiry_status", validInquiryStatus)
	})
}

func validInquiryStatus(fl validator.FieldLevel) bool {
	status := fl.Field().String()
	for _, s := range services.InquiryStatuses {
		if s == status {
			return true
		}
	}
	return false
}
