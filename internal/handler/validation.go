package handler

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dan9191/user-service/internal/models"
	"github.com/go-playground/validator/v10"
)

const invalidValueMsg = "Invalid value"

// FieldError describes one failed field check
type FieldError struct {
	Value    any    `json:"value,omitempty"`
	Msg      string `json:"msg"`
	Param    string `json:"param"`
	Location string `json:"location"`
}

type userRule struct {
	field string
	tag   string
}

var userRules = []userRule{
	{field: models.FieldEmail, tag: "email,email_tld"},
	{field: models.FieldPassword, tag: "min=8"},
	{field: models.FieldName, tag: "min=2"},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("email_tld", hasTLD); err != nil {
		panic(err)
	}
	return v
}

// hasTLD requires the address domain to end in a label of two or more
// characters, so a@b.c and a@localhost are rejected
func hasTLD(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	domain := addr[strings.LastIndex(addr, "@")+1:]
	dot := strings.LastIndex(domain, ".")
	return dot >= 0 && len(domain)-dot-1 >= 2
}

// validateUser checks the create/update fields of body and returns one
// FieldError per failing field, in declaration order
func validateUser(body map[string]any) []FieldError {
	var errs []FieldError
	for _, rule := range userRules {
		raw, present := body[rule.field]
		if err := validate.Var(stringify(raw), rule.tag); err != nil {
			fe := FieldError{Msg: invalidValueMsg, Param: rule.field, Location: "body"}
			if present {
				fe.Value = raw
			}
			errs = append(errs, fe)
		}
	}
	return errs
}

// stringify renders a decoded body value the way it is checked: absent and
// null values are empty, scalars use their literal text
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
