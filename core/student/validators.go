package student

import (
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

var (
	genderTag  = "gender"
	genderText = "invalid gender"

	discountTierTag  = "discount_tier"
	discountTierText = "invalid discount tier"

	academicYearTag  = "academic_year"
	academicYearText = "invalid academic year"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(genderTag, choiceValidation(Genders))
	core.RegisterCustomTranslation(validate, translator, genderTag, genderText)

	_ = validate.RegisterValidation(discountTierTag, choiceValidation(DiscountTiers))
	core.RegisterCustomTranslation(validate, translator, discountTierTag, discountTierText)

	_ = validate.RegisterValidation(academicYearTag, choiceValidation(AcademicYears))
	core.RegisterCustomTranslation(validate, translator, academicYearTag, academicYearText)
}

// choiceValidation checks that the field value is one of `choices`.
func choiceValidation(choices []string) validator.Func {
	sorted := make([]string, len(choices))
	copy(sorted, choices)
	sort.Strings(sorted)

	return func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		if i := sort.SearchStrings(sorted, val); i < len(sorted) {
			return sorted[i] == val
		}
		return false
	}
}
