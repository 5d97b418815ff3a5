package router

import (
	"regexp"

	"github.com/devsahoo/auth-service/internal/model"
	"github.com/devsahoo/auth-service/internal/validate"
)

// Field patterns shared by the schemas below.
var (
	lettersOnlyRe = regexp.MustCompile(`^[A-Za-z]+$`)
	// tenant name: letters, digits and spaces, at least one letter
	tenantNameRe = regexp.MustCompile(`^[A-Za-z0-9 ]*[A-Za-z][A-Za-z0-9 ]*$`)
	// address: letters, digits, commas, hyphens and spaces, at least one letter
	addressRe = regexp.MustCompile(`^[0-9,\- ]*[A-Za-z][A-Za-z0-9,\- ]*$`)
)

// Schemas for every validated endpoint. Validation runs after sanitization
// and before the handler; a failing schema collects every violation at once.

var registerSchema = validate.Schema{
	"firstName": validate.String().Min(2).Max(30).Required(),
	"lastName":  validate.String().Min(2).Max(30).Required(),
	"email":     validate.String().Email().Required(),
	"password":  validate.String().Password().Required(),
	"role":      validate.String().OneOf(model.RoleAdmin),
}

var loginSchema = validate.Schema{
	"email":    validate.String().Email().Required(),
	"password": validate.String().Required(),
}

var idParamSchema = validate.Schema{
	"id": validate.Number().Positive().Required(),
}

var tenantSchema = validate.Schema{
	"name": validate.String().Max(100).Required().
		Pattern(tenantNameRe, "name must contain at least one letter and may include digits and spaces"),
	"address": validate.String().Max(255).Required().
		Pattern(addressRe, "address must contain letters and may include digits, commas, hyphens, and spaces"),
}

var createUserSchema = validate.Schema{
	"firstName": validate.String().Required().Pattern(lettersOnlyRe, "first name must contain only letters"),
	"lastName":  validate.String().Required().Pattern(lettersOnlyRe, "last name must contain only letters"),
	"email":     validate.String().Email().Required(),
	"password":  validate.String().Password().Required(),
	"role":      validate.String().OneOf(model.RoleCustomer),
}

var updateUserSchema = validate.Schema{
	"firstName": validate.String().Required().Pattern(lettersOnlyRe, "first name must contain only letters"),
	"lastName":  validate.String().Required().Pattern(lettersOnlyRe, "last name must contain only letters"),
	"email":     validate.String().Email().Required(),
	"role":      validate.String().OneOf(model.RoleAdmin, model.RoleManager, model.RoleCustomer),
	"tenantId":  validate.Number().Positive(),
}

var listUsersSchema = validate.Schema{
	"role": validate.String().OneOf(model.RoleAdmin, model.RoleManager, model.RoleCustomer),
}

var createManagerSchema = validate.Schema{
	"firstName": validate.String().Required().Pattern(lettersOnlyRe, "first name must contain only letters"),
	"lastName":  validate.String().Required().Pattern(lettersOnlyRe, "last name must contain only letters"),
	"email":     validate.String().Email().Required(),
	"password":  validate.String().Password().Required(),
	"role":      validate.String().OneOf(model.RoleManager).Required(),
	"tenantId":  validate.Number().Positive().Required(),
}

var updateManagerSchema = validate.Schema{
	"firstName": validate.String().Required().Pattern(lettersOnlyRe, "first name must contain only letters"),
	"lastName":  validate.String().Required().Pattern(lettersOnlyRe, "last name must contain only letters"),
	"email":     validate.String().Email().Required(),
	"role":      validate.String().OneOf(model.RoleManager).Required(),
	"tenantId":  validate.Number().Positive().Required(),
}
