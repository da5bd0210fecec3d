package api

// LoginRequest carries the credentials submitted to POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// User is the administrative identity as the server reports it.
// RequiresPasswordChange is optional on the wire; absent means false.
type User struct {
	ID                     string `json:"id"`
	Username               string `json:"username"`
	Role                   string `json:"role"`
	RequiresPasswordChange *bool  `json:"requiresPasswordChange,omitempty"`
}

// LoginResponse is the body of a successful login. ExpiresIn is the
// credential lifetime in seconds.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
	User      User   `json:"user"`
}

// ChangePasswordRequest carries the password rotation submitted to
// POST /auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePasswordResponse is the body of a successful password change. The
// returned user has requiresPasswordChange cleared.
type ChangePasswordResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}
