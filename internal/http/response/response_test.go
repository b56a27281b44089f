package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKWithData(t *testing.T) {
	resp := OKWithData(map[string]any{"id": 1})

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("something broke")

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "something broke", resp.Error)
}

func TestValidationError(t *testing.T) {
	type req struct {
		Username string  `validate:"required,min=3"`
		Email    string  `validate:"required,email"`
		Speed    float64 `validate:"gte=0.5,lte=2.0"`
		Tier     string  `validate:"oneof=Basic Premium Ultimate"`
	}

	v := validator.New()
	err := v.Struct(req{Email: "not-an-email", Speed: 5, Tier: "Gold"})
	require.Error(t, err)

	verrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)

	resp := ValidationError(verrs)

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Username is a required field")
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Speed is out of range")
	assert.Contains(t, resp.Error, "field Tier must be one of")
}
