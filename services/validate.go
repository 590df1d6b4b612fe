package services

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validationMessages runs the struct's validate tags and turns each failure into the message
// registered for its field
func validationMessages(v interface{}, messages map[string]string) []string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if m, ok := messages[fe.StructField()]; ok {
			msgs = append(msgs, m)
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return msgs
}
