package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"spv-projection/internal/api/models"
	"spv-projection/internal/config"
	"spv-projection/internal/model"
)

var errBaseFile = errors.New("base_file is not supported in API requests")

func writeError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// configError maps a settings problem to 400 INVALID_CONFIG, listing each
// invalid field when the error carries them.
func configError(c *gin.Context, err error) {
	var details map[string]interface{}
	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		details = map[string]interface{}{"fields": verrs}
	}
	writeError(c, http.StatusBadRequest, "INVALID_CONFIG", err.Error(), details)
}

// resolveSettings turns a request config into validated settings.
func resolveSettings(f config.File) (model.Settings, error) {
	if f.BaseFile != "" {
		return model.Settings{}, errBaseFile
	}
	s, err := f.Resolve()
	if err != nil {
		return model.Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return model.Settings{}, err
	}
	return s, nil
}
