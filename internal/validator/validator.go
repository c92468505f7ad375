package validator

// Validator is the entry point services use for request validation
type Validator struct {
	business *BusinessValidator
}

func New() *Validator {
	return &Validator{business: NewBusinessValidator()}
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// Validate runs struct tag validation only
func (v *Validator) Validate(s interface{}) ValidationErrors {
	return v.business.Validate(s)
}
