package validator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/learning-service/internal/models"
	"github.com/SAP-F-2025/learning-service/internal/utils"
)

type ValidationError = utils.ValidationError
type ValidationErrors = utils.ValidationErrors

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return utils.ToValidationErrors(err)
	}
	return nil
}

// ValidateRegister validates signup payloads
func (bv *BusinessValidator) ValidateRegister(req *RegisterRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if strings.TrimSpace(req.Username) != req.Username {
		errors = append(errors, ValidationError{
			Field:   "username",
			Message: "must not start or end with whitespace",
			Value:   req.Username,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateCourseCreate validates course creation business rules
func (bv *BusinessValidator) ValidateCourseCreate(req *CourseCreateRequest) ValidationErrors {
	var errors ValidationErrors

	// Basic struct validation
	errors = append(errors, bv.Validate(req)...)

	seen := make(map[string]int, len(req.Modules))
	for i, m := range req.Modules {
		key := strings.ToLower(strings.TrimSpace(m.YoutubeURL))
		if prev, ok := seen[key]; ok {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("modules[%d].youtube_url", i),
				Message: fmt.Sprintf("duplicates modules[%d]", prev),
				Value:   m.YoutubeURL,
				Rule:    "business_logic",
			})
			continue
		}
		seen[key] = i
	}

	return errors
}

// ValidateModuleCreate validates a single module added to an existing course
func (bv *BusinessValidator) ValidateModuleCreate(req *ModuleCreateRequest, existing *models.Course) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if existing != nil && !existing.IsActive {
		errors = append(errors, ValidationError{
			Field:   "course",
			Message: "cannot add modules to an inactive course",
			Value:   existing.ID,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateTestCreate validates test creation business rules
func (bv *BusinessValidator) ValidateTestCreate(req *TestCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	for i, q := range req.Questions {
		if q.CorrectAnswer == "" || len(q.Options) == 0 {
			continue
		}
		found := false
		for _, opt := range q.Options {
			if opt == q.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("questions[%d].correct_answer", i),
				Message: "must be one of the options",
				Value:   q.CorrectAnswer,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// ValidateGradeSubmission validates an admin grade payload against the graded test
func (bv *BusinessValidator) ValidateGradeSubmission(req *GradeSubmissionRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.Score != nil && req.MaxScore != nil && *req.MaxScore > 0 && *req.Score > *req.MaxScore {
		errors = append(errors, ValidationError{
			Field:   "score",
			Message: "cannot exceed maxScore",
			Value:   *req.Score,
			Rule:    "business_logic",
		})
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("youtube_url", func(fl validator.FieldLevel) bool {
		return models.IsYoutubeURL(fl.Field().String())
	})

	// Title validation (1-200 characters after trimming)
	bv.validate.RegisterValidation("course_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	// Points range validation
	bv.validate.RegisterValidation("points_range", func(fl validator.FieldLevel) bool {
		points := fl.Field().Int()
		return points >= 0 && points <= 1000
	})

	// Grades are free-form labels such as "A", "B+" or "pass"
	bv.validate.RegisterValidation("grade_label", func(fl validator.FieldLevel) bool {
		grade := strings.TrimSpace(fl.Field().String())
		return len(grade) >= 1 && len(grade) <= 20
	})

	// At least 8 characters with one letter and one digit
	bv.validate.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		pw := fl.Field().String()
		if len(pw) < 8 || len(pw) > 72 {
			return false
		}
		var letter, digit bool
		for _, r := range pw {
			switch {
			case unicode.IsLetter(r):
				letter = true
			case unicode.IsDigit(r):
				digit = true
			}
		}
		return letter && digit
	})
}
