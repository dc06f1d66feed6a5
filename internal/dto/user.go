package dto

// CreateUserRequest creates a staff account.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required,max=150"`
	Role     string `json:"role" validate:"required,oneof=super_admin admin_staff branch_manager counselor admission_officer"`
	Branch   string `json:"branch" validate:"omitempty,max=100"`
}

// UpdateUserRequest changes a staff account. Nil fields are left unchanged.
type UpdateUserRequest struct {
	Password *string `json:"password" validate:"omitempty,min=8"`
	FullName *string `json:"fullName" validate:"omitempty,min=1,max=150"`
	Role     *string `json:"role" validate:"omitempty,oneof=super_admin admin_staff branch_manager counselor admission_officer"`
	Branch   *string `json:"branch" validate:"omitempty,max=100"`
	Active   *bool   `json:"active"`
}
