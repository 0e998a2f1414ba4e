package models

// Role identifies which kind of account a principal authenticated as.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleInsurer  Role = "insurer"
	RoleCustomer Role = "customer"
)

// Principal is the result of a successful login. Exactly one role applies.
type Principal struct {
	Role  Role   `json:"role"`
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Principal
	Token string `json:"token"`
}

type OTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type OTPVerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}
