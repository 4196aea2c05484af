package auth

import "github.com/fjod/freshfruit-storefront/internal/forms"

type LoginForm struct {
	Email    string `form:"email" validate:"required,simple_email"`
	Password string `form:"password" validate:"required"`
}

type RegisterForm struct {
	FullName        string `form:"fullName" validate:"required"`
	Email           string `form:"email" validate:"required,simple_email"`
	Phone           string `form:"phone" validate:"required,phone10"`
	Password        string `form:"password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
	AgreeToTerms    bool   `form:"agreeToTerms" validate:"required"`
}

var loginMessages = forms.Messages{
	"email": {
		"required":     "Email is required",
		"simple_email": "Email is invalid",
	},
	"password": {"required": "Password is required"},
}

var registerMessages = forms.Messages{
	"fullName": {"required": "Full name is required"},
	"email": {
		"required":     "Email is required",
		"simple_email": "Email is invalid",
	},
	"phone": {
		"required": "Phone number is required",
		"phone10":  "Phone number must be 10 digits",
	},
	"password": {
		"required": "Password is required",
		"min":      "Password must be at least 8 characters",
	},
	"confirmPassword": {
		"required": "Please confirm your password",
		"eqfield":  "Passwords do not match",
	},
	"agreeToTerms": {"required": "You must agree to the terms and conditions"},
}
