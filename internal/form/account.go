package form

import (
	"regexp"

	"github.com/caltrack/caltrack-go/internal/crypto"
	"github.com/caltrack/caltrack-go/internal/model"
)

// RegisterForm is the registration input as typed by the user.
type RegisterForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	AcceptTerms     bool
}

// Request returns the create-user body for the form.
func (f RegisterForm) Request() model.CreateUserRequest {
	return model.CreateUserRequest{Name: f.Name, Email: f.Email, Password: f.Password}
}

var registerRules = []Rule[RegisterForm]{
	{Field: "name", Message: "name is required", Valid: func(f RegisterForm) bool { return required(f.Name) }},
	{Field: "name", Message: "name must be 2 to 50 characters", Valid: func(f RegisterForm) bool { return lengthBetween(f.Name, 2, 50) }},
	{Field: "email", Message: "email is required", Valid: func(f RegisterForm) bool { return required(f.Email) }},
	{Field: "email", Message: "email is invalid", Valid: func(f RegisterForm) bool { return validEmail(f.Email) }},
	{Field: "password", Message: "password is required", Valid: func(f RegisterForm) bool { return f.Password != "" }},
	{Field: "password", Message: "password must have at least 8 characters with an uppercase letter, a lowercase letter, a digit and one of @$!%*?&",
		Valid: func(f RegisterForm) bool { return crypto.CheckPasswordStrength(f.Password) == nil }},
	{Field: "confirmPassword", Message: "confirm your password", Valid: func(f RegisterForm) bool { return f.ConfirmPassword != "" }},
	{Field: "confirmPassword", Message: "passwords do not match", Valid: func(f RegisterForm) bool { return f.Password == f.ConfirmPassword }},
	{Field: "acceptTerms", Message: "you must accept the terms", Valid: func(f RegisterForm) bool { return f.AcceptTerms }},
}

func ValidateRegister(f RegisterForm) error {
	return Validate(f, registerRules)
}

// LoginForm is the login input.
type LoginForm struct {
	Email    string
	Password string
}

var loginRules = []Rule[LoginForm]{
	{Field: "email", Message: "email is required", Valid: func(f LoginForm) bool { return required(f.Email) }},
	{Field: "email", Message: "email is invalid", Valid: func(f LoginForm) bool { return validEmail(f.Email) }},
	{Field: "password", Message: "password is required", Valid: func(f LoginForm) bool { return f.Password != "" }},
}

func ValidateLogin(f LoginForm) error {
	return Validate(f, loginRules)
}

// ProfileForm is the user settings input.
type ProfileForm struct {
	Name  string
	Email string
}

// fullName is a first and last name, letters only (Polish letters included).
var fullName = regexp.MustCompile(`^[A-Za-zĄąĆćĘęŁłŃńÓóŚśŹźŻż\s]{2,}\s+[A-Za-zĄąĆćĘęŁłŃńÓóŚśŹźŻż\s]{2,}$`)

var profileRules = []Rule[ProfileForm]{
	{Field: "name", Message: "name is required", Valid: func(f ProfileForm) bool { return required(f.Name) }},
	{Field: "name", Message: "name must be at least 3 characters", Valid: func(f ProfileForm) bool { return lengthBetween(f.Name, 3, 100) }},
	{Field: "name", Message: "enter a first and last name", Valid: func(f ProfileForm) bool { return fullName.MatchString(f.Name) }},
	{Field: "email", Message: "email is required", Valid: func(f ProfileForm) bool { return required(f.Email) }},
	{Field: "email", Message: "email is invalid", Valid: func(f ProfileForm) bool { return validEmail(f.Email) }},
}

func ValidateProfile(f ProfileForm) error {
	return Validate(f, profileRules)
}

// ValidateCalorieLimit checks a daily calorie limit.
func ValidateCalorieLimit(limit int) error {
	return Validate(limit, []Rule[int]{
		{Field: "dailyCalorieLimit", Message: "limit must not be negative", Valid: func(v int) bool { return v >= 0 }},
	})
}

var createUserRules = []Rule[model.CreateUserRequest]{
	{Field: "name", Message: "name must be 2 to 50 characters", Valid: func(r model.CreateUserRequest) bool { return lengthBetween(r.Name, 2, 50) }},
	{Field: "email", Message: "email is invalid", Valid: func(r model.CreateUserRequest) bool { return validEmail(r.Email) }},
	{Field: "password", Message: "password does not meet the policy",
		Valid: func(r model.CreateUserRequest) bool { return crypto.CheckPasswordStrength(r.Password) == nil }},
}

// ValidateCreateUser is the store-side check of a registration body.
func ValidateCreateUser(r model.CreateUserRequest) error {
	return Validate(r, createUserRules)
}

var updateUserRules = []Rule[model.UpdateUserRequest]{
	{Field: "name", Message: "name must be 2 to 100 characters", Valid: func(r model.UpdateUserRequest) bool {
		return r.Name == nil || lengthBetween(*r.Name, 2, 100)
	}},
	{Field: "email", Message: "email is invalid", Valid: func(r model.UpdateUserRequest) bool {
		return r.Email == nil || validEmail(*r.Email)
	}},
	{Field: "password", Message: "password does not meet the policy", Valid: func(r model.UpdateUserRequest) bool {
		return r.Password == nil || crypto.CheckPasswordStrength(*r.Password) == nil
	}},
	{Field: "role", Message: "role must be user or admin", Valid: func(r model.UpdateUserRequest) bool {
		return r.Role == nil || model.ValidRole(*r.Role)
	}},
	{Field: "dailyCalorieLimit", Message: "limit must not be negative", Valid: func(r model.UpdateUserRequest) bool {
		return r.DailyCalorieLimit == nil || *r.DailyCalorieLimit >= 0
	}},
}

// ValidateUserUpdate checks the fields present in a partial user update.
func ValidateUserUpdate(r model.UpdateUserRequest) error {
	return Validate(r, updateUserRules)
}
