package validators

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Text string `json:"text" validate:"notblank"`
}

func TestNotBlank(t *testing.T) {
	validate := New()

	assert.NoError(t, validate.Struct(&sample{Text: " hi "}))
	for _, text := range []string{"", " ", "\t\n"} {
		assert.Error(t, validate.Struct(&sample{Text: text}))
	}
}

func TestNew_ReportsJSONNames(t *testing.T) {
	err := New().Struct(&sample{})

	var ve validator.ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "text", ve[0].Field())
}
