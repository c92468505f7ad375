package models

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/learning-service/internal/utils"
)

var youtubeURLPattern = regexp.MustCompile(
	`^(https?://)?(www\.|m\.)?(youtube\.com/(watch\?v=|embed/|shorts/)|youtu\.be/)[A-Za-z0-9_-]{6,}`)

// IsYoutubeURL reports whether s looks like a YouTube video link
func IsYoutubeURL(s string) bool {
	return youtubeURLPattern.MatchString(s)
}

var modelValidator = newModelValidator()

func newModelValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("youtube_url", func(fl validator.FieldLevel) bool {
		return IsYoutubeURL(fl.Field().String())
	})
	return v
}

// validateModel runs the schema constraints checked before persistence
func validateModel(m interface{}) error {
	if err := modelValidator.Struct(m); err != nil {
		return utils.ToValidationErrors(err)
	}
	return nil
}
