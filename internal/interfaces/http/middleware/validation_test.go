package middleware

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required,min=10"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/reviews", func(c *gin.Context) {
		var req reviewInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req))
	})
	return router
}

func TestHandleValidationError_FieldDetails(t *testing.T) {
	w := testutil.Do(t, validationRouter(), testutil.Request{
		Method: http.MethodPost,
		Path:   "/reviews",
		Body:   map[string]interface{}{"rating": 9, "comment": "short"},
	})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "rating", resp.Error.Details[0].Field)
	assert.Equal(t, "max", resp.Error.Details[0].Tag)
	assert.Equal(t, "Must be at most 5", resp.Error.Details[0].Message)
	assert.Equal(t, "comment", resp.Error.Details[1].Field)
	assert.Equal(t, "Must be at least 10 characters", resp.Error.Details[1].Message)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	w := testutil.Do(t, validationRouter(), testutil.Request{
		Method: http.MethodPost,
		Path:   "/reviews",
		Body:   []byte(`{"rating":`),
	})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, dto.ErrCodeInvalidJSON)
}

func TestHandleValidationError_Valid(t *testing.T) {
	w := testutil.Do(t, validationRouter(), testutil.Request{
		Method: http.MethodPost,
		Path:   "/reviews",
		Body:   reviewInput{Rating: 4, Comment: "Sturdy and bright"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetValidationMessage(t *testing.T) {
	type input struct {
		Email string `validate:"email"`
		UUID  string `validate:"uuid"`
		OneOf string `validate:"oneof=asc desc"`
		GTE   int    `validate:"gte=1"`
	}
	err := validator.New().Struct(input{Email: "x", UUID: "x", OneOf: "up"})
	require.Error(t, err)

	messages := map[string]string{}
	for _, e := range err.(validator.ValidationErrors) {
		messages[e.Field()] = getValidationMessage(e)
	}
	assert.Equal(t, map[string]string{
		"Email": "Invalid email format",
		"UUID":  "Invalid UUID format",
		"OneOf": "Must be one of: asc desc",
		"GTE":   "Must be greater than or equal to 1",
	}, messages)
}
