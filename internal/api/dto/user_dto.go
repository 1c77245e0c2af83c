package dto

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the body returned by POST /login. StatusCode is filled in
// by the client from the HTTP response and is not part of the wire format.
type LoginResponse struct {
	Success    bool   `json:"success"`
	Token      string `json:"token,omitempty"`
	Message    string `json:"message,omitempty"`
	StatusCode int    `json:"-"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RegisterResponse is the body returned by POST /register.
type RegisterResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	StatusCode int    `json:"-"`
}
