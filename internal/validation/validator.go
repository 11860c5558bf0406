package validation

import (
	"reflect"
	"strings"
	"time"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"

	"github.com/go-playground/validator/v10"
)

// analysisDateLayout is the wire format for analysis window boundaries.
const analysisDateLayout = "2006-01-02"

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// singleton instance of the validator
var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("group_dimension", validateGroupDimension)
	_ = v.RegisterValidation("analysis_date", validateAnalysisDate)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Custom validation functions

// validateGroupDimension validates that a grouping dimension names a
// partitionable transaction column
func validateGroupDimension(fl validator.FieldLevel) bool {
	return models.ValidGroupDimension(fl.Field().String())
}

// validateAnalysisDate validates that a window boundary parses as YYYY-MM-DD
func validateAnalysisDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(analysisDateLayout, fl.Field().String())
	return err == nil
}
