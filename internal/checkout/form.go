package checkout

import (
	"fmt"

	"github.com/fjod/freshfruit-storefront/internal/forms"
)

const DefaultPaymentMethod = "razorpay"

type DeliveryForm struct {
	Name                string `form:"name" validate:"required"`
	Email               string `form:"email" validate:"required,simple_email"`
	Phone               string `form:"phone" validate:"required,phone10"`
	Address             string `form:"address" validate:"required"`
	City                string `form:"city" validate:"required"`
	Pincode             string `form:"pincode" validate:"required,pincode6"`
	SpecialInstructions string `form:"specialInstructions"`
	PaymentMethod       string `form:"paymentMethod" validate:"omitempty,oneof=razorpay"`
}

var deliveryMessages = forms.Messages{
	"name": {"required": "Name is required"},
	"email": {
		"required":     "Email is required",
		"simple_email": "Email is invalid",
	},
	"phone": {
		"required": "Phone number is required",
		"phone10":  "Phone number must be 10 digits",
	},
	"address": {"required": "Address is required"},
	"city":    {"required": "City is required"},
	"pincode": {
		"required": "Pincode is required",
		"pincode6": "Pincode must be 6 digits",
	},
	"paymentMethod": {"oneof": "Unsupported payment method"},
}

func (f *DeliveryForm) normalize() {
	forms.Trim(&f.Name, &f.Email, &f.Phone, &f.Address, &f.City, &f.Pincode, &f.SpecialInstructions, &f.PaymentMethod)
	if f.PaymentMethod == "" {
		f.PaymentMethod = DefaultPaymentMethod
	}
}

// UserAddress is the single-line address stored on the order.
func (f DeliveryForm) UserAddress() string {
	return fmt.Sprintf("%s, %s, %s, %s", f.Name, f.Address, f.City, f.Pincode)
}
