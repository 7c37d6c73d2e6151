package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	yearTag  = "year"
	yearText = "must be one of: 1st, 2nd, 3rd, 4th"

	noticeCategoryTag  = "noticecategory"
	noticeCategoryText = "must be one of: general, academic, event, holiday"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"

	yearValues           = []string{"1st", "2nd", "3rd", "4th"}
	noticeCategoryValues = []string{"general", "academic", "event", "holiday"}
)

// NewValidators instantiates the app validator and its translator.
func NewValidators() (*validator.Validate, ut.Translator) {
	lang := en.New()
	uni := ut.New(lang, lang)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(yearTag, oneOfValidation(yearValues))
	RegisterCustomTranslation(validate, translator, yearTag, yearText)

	_ = validate.RegisterValidation(noticeCategoryTag, oneOfValidation(noticeCategoryValues))
	RegisterCustomTranslation(validate, translator, noticeCategoryTag, noticeCategoryText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)

	return validate, translator
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

func oneOfValidation(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, v := range values {
			if val == v {
				return true
			}
		}
		return false
	}
}
