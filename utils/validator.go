package utils

import (
	"insurepay/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding tags used by request models.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return registerOn(v)
}

func registerOn(v *validator.Validate) error {
	if err := v.RegisterValidation("invoicestatus", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseInvoiceStatus(fl.Field().String())
		return ok
	}); err != nil {
		return err
	}
	return v.RegisterValidation("gstrate", func(fl validator.FieldLevel) bool {
		rate := fl.Field().Float()
		return rate >= 0 && rate <= 1
	})
}
