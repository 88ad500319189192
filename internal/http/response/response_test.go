package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKAndError(t *testing.T) {
	ok := OK()
	assert.Equal(t, StatusOK, ok.Status)
	assert.Empty(t, ok.Error)

	withData := StatusOKWithData(map[string]any{"id": 1})
	assert.Equal(t, StatusOK, withData.Status)
	assert.NotNil(t, withData.Data)

	errResp := Error("something went wrong")
	assert.Equal(t, StatusError, errResp.Status)
	assert.Equal(t, "something went wrong", errResp.Error)
}

func TestValidationError(t *testing.T) {
	type request struct {
		Email    string `validate:"required,email"`
		Capacity int    `validate:"required,gt=0"`
	}

	err := validator.New().Struct(request{Email: "not-an-email", Capacity: 0})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Capacity is a required field")
}
