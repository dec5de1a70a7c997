package model

type SignUpRequest struct {
	Username     string `json:"username" validate:"required,min=4,max=20,username"`
	Password     string `json:"password" validate:"required,min=8,max=20,password_policy"`
	MemberName   string `json:"memberName" validate:"required,min=2,max=50,person_name"`
	PhoneNumber  string `json:"phoneNumber" validate:"required,mobile"`
	EmailAddress string `json:"emailAddress" validate:"omitempty,email,max=100"`
	Role         string `json:"role" validate:"omitempty,max=20"`
}

type SignInRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=20,password_policy"`
}

type MemberStatusRequest struct {
	Status MemberStatus `json:"status" validate:"required,oneof=ACTIVE SUSPENDED DELETED"`
	Memo   *string      `json:"memo" validate:"omitempty,max=500"`
}

type MemberRoleRequest struct {
	Role MemberRole `json:"role" validate:"required,oneof=USER ADMIN SUPER_ADMIN"`
}

type MemberLockRequest struct {
	Locked bool `json:"locked"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=8,max=20,password_policy"`
}
