package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/guhospital/hospital-api/internal/model"
)

// Register installs the custom binding tags on gin's validator engine.
func Register() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("national_id", func(fl validator.FieldLevel) bool {
		return model.ValidNationalID(fl.Field().String())
	})
}
