package user

type UpdateProfileReq struct {
	Name  *string `json:"name,omitempty"`
	Photo *string `json:"photo,omitempty"`
}

type SendEmailChangeOTPReq struct {
	NewEmail string `json:"newEmail" validate:"required,email"`
}

type ChangeEmailReq struct {
	OTP string `json:"otp" validate:"required,len=6"`
}
