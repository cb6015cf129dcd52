package registry

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/atlas/internal/dataset"
	"github.com/roach88/atlas/internal/model"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Check reports reference entries that break their struct constraints or
// reuse an id. Entries are never removed: an entry with a duplicate id is
// still shadowed by the first one when indexed.
func Check[T model.Identifiable](path string, items []T) []dataset.Problem {
	var problems []dataset.Problem
	firstSeen := make(map[string]int, len(items))

	for i, item := range items {
		pos := i + 1
		if err := validate.Struct(item); err != nil {
			problems = append(problems, dataset.Problem{
				Path:    path,
				Kind:    dataset.ProblemIntegrity,
				Message: fmt.Sprintf("entry %d: %s", pos, formatValidationError(err)),
			})
		}
		id := item.Key()
		if id == "" {
			continue
		}
		if first, ok := firstSeen[id]; ok {
			problems = append(problems, dataset.Problem{
				Path:    path,
				Kind:    dataset.ProblemIntegrity,
				Message: fmt.Sprintf("entry %d: duplicate id %q (first seen at entry %d)", pos, id, first),
			})
			continue
		}
		firstSeen[id] = pos
	}

	return problems
}

// CheckEntityClasses reports entities whose entity_class does not resolve.
// It is skipped when no entity classes were loaded.
func CheckEntityClasses(path string, entities *Index[model.Entity], classes *Index[model.EntityClass]) []dataset.Problem {
	if classes == nil || classes.Len() == 0 {
		return nil
	}
	var problems []dataset.Problem
	for i, e := range entities.All() {
		if e.EntityClass == "" || classes.Has(e.EntityClass) {
			continue
		}
		problems = append(problems, dataset.Problem{
			Path:    path,
			Kind:    dataset.ProblemIntegrity,
			Message: fmt.Sprintf("entry %d: entity_class %q of %q not found in %s", i+1, e.EntityClass, e.ID, classes.Name()),
		})
	}
	return problems
}

// formatValidationError turns validator errors into readable text.
func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return strings.Join(msgs, "; ")
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
