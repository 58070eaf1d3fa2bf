package models

// LoginRequest representa las credenciales enviadas por el cliente.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest representa los datos de registro de un usuario nuevo.
// El registro NO crea sesión: primero hay que verificar el email con OTP.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// VerifyEmailRequest verifica la propiedad del email con un código OTP.
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

// ForgotPasswordRequest solicita un OTP de recuperación de contraseña.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest confirma el reseteo de contraseña con OTP.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Otp         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

// LoginResponse es la respuesta de login y de verify-email exitosos.
type LoginResponse struct {
	Token   string       `json:"token"`
	UserID  string       `json:"userId"`
	User    *UserProfile `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
}

// RegisterResponse es la respuesta de un registro exitoso (sin token).
type RegisterResponse struct {
	UserID  string `json:"userId"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is a simple error shape for API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
