package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=1"`
	Ignored  string `json:"-"`
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	errs := Validate(sample{Quantity: 0})

	assert.Equal(t, map[string]string{
		"name":     "required",
		"quantity": "gte=1",
	}, errs)
}

func TestValidate_Valid(t *testing.T) {
	assert.Nil(t, Validate(sample{Name: "Canon C70", Quantity: 2}))
}
