package submission

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"vlogvalidator/core"
)

var (
	classTag  = "class"
	classText = "invalid class code"

	scoreRangeText = "score must be between 0 and 100"
)

// InitValidators registers the submission validators for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(classTag, classValidation)
	core.RegisterCustomTranslation(validate, translator, classTag, classText)

	core.RegisterCustomTranslation(validate, translator, "min", scoreRangeText)
	core.RegisterCustomTranslation(validate, translator, "max", scoreRangeText)
}

// classValidation only allows the fixed class codes.
func classValidation(fl validator.FieldLevel) bool {
	return IsValidClass(fl.Field().String())
}

func (ns *NewSubmission) Validate(validate *validator.Validate) error {
	ns.StudentName = core.CleanString(ns.StudentName)
	ns.Class = core.CleanString(ns.Class)
	ns.RollNumber = core.CleanString(ns.RollNumber)
	ns.VideoURL = core.CleanString(ns.VideoURL)
	if ns.VideoTitle == "" {
		ns.VideoTitle = UntitledVideoTitle
	}
	return validate.Struct(ns)
}

func (g *Grade) Validate(validate *validator.Validate) error {
	g.TeacherNote = core.CleanString(g.TeacherNote)
	return validate.Struct(g)
}

func (su *StudentUpdate) Validate(validate *validator.Validate) error {
	su.StudentName = core.CleanString(su.StudentName)
	su.Class = core.CleanString(su.Class)
	su.RollNumber = core.CleanString(su.RollNumber)
	return validate.Struct(su)
}
