package reflected

import (
	"errors"
	"reflect"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	play "github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
	"github.com/hashicorp/go-multierror"
	"github.com/miruken-go/reflected/catalog"
)

// descriptorRules are the struct level checks reported by tag.
var descriptorRules = map[string]string{
	"target":   "{0} must name a type or reference one",
	"member":   "{0} is required for {1} bindings",
	"kind":     "{0} {1} is not a known member kind",
	"shape":    "{0} {1} cannot bind this kind of member",
	"callable": "{0} {1} does not fit the declared shape",
	"scope":    "{0} must be static for {1} bindings",
}

var (
	validatorOnce sync.Once
	validate      *play.Validate
	translator    ut.Translator
)

func descriptorValidator() (*play.Validate, ut.Translator) {
	validatorOnce.Do(func() {
		english := en.New()
		trans, _ := ut.New(english, english).GetTranslator("en")
		v := play.New()
		if err := entrans.RegisterDefaultTranslations(v, trans); err != nil {
			panic(err)
		}
		for tag, text := range descriptorRules {
			tag, text := tag, text
			if err := v.RegisterTranslation(tag, trans,
				func(t ut.Translator) error {
					return t.Add(tag, text, true)
				},
				func(t ut.Translator, fe play.FieldError) string {
					msg, _ := t.T(tag, fe.Field(), fe.Param())
					return msg
				}); err != nil {
				panic(err)
			}
		}
		v.RegisterStructValidation(validateDescriptor, Descriptor{})
		validate, translator = v, trans
	})
	return validate, translator
}

// Validate checks the Descriptor is well formed.
func (d *Descriptor) Validate() error {
	v, trans := descriptorValidator()
	err := v.Struct(d)
	if err == nil {
		return nil
	}
	var fieldErrors play.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return &DescriptorError{d, err}
	}
	var errs error
	for _, fe := range fieldErrors {
		errs = multierror.Append(errs, errors.New(fe.Translate(trans)))
	}
	return &DescriptorError{d, errs}
}

func validateDescriptor(sl play.StructLevel) {
	d := sl.Current().Interface().(Descriptor)
	if d.Type == "" && d.TypeRef == nil {
		sl.ReportError(d.Type, "Type", "Type", "target", "")
	}
	if !d.Kind.Valid() {
		sl.ReportError(d.Kind, "Kind", "Kind", "kind", d.Kind.String())
		return
	}
	if d.Member == "" && d.Kind != catalog.TypeInfo && d.Kind != catalog.Constructor {
		sl.ReportError(d.Member, "Member", "Member", "member", d.Kind.String())
	}
	if !d.Shape.Accepts(d.Kind) {
		sl.ReportError(d.Shape, "Shape", "Shape", "shape", d.Shape.String())
		return
	}
	if !d.Static && (d.Kind == catalog.Constructor || d.Kind == catalog.TypeInfo) {
		sl.ReportError(d.Static, "Static", "Static", "scope", d.Kind.String())
	}
	if !callableFits(&d) {
		param := "<nil>"
		if d.Callable != nil {
			param = d.Callable.String()
		}
		sl.ReportError(d.Callable, "Callable", "Callable", "callable", param)
	}
}

// callableFits checks the structure of the declared callable
// against the shape, leaving type compatibility to synthesis.
func callableFits(d *Descriptor) bool {
	ct := d.Callable
	if ct == nil || ct.Kind() != reflect.Func {
		return false
	}
	recv := 0
	if d.receiver() != nil {
		recv = 1
	}
	switch d.Shape {
	case GetterShape:
		return ct.NumIn() == recv && ct.NumOut() == 1
	case SetterShape:
		return ct.NumIn() == recv+1 && ct.NumOut() == 0
	case InvokerShape:
		return ct.NumIn() >= recv
	case MemberInfoShape:
		return ct == memberInfoType
	case EventShape:
		return ct.NumIn() == recv && ct.NumOut() == 1 && d.event != nil
	}
	return false
}

var memberInfoType = reflect.TypeFor[func() *catalog.Member]()
