package domain

// Credentials is the login identifier pair. Username is an email-formatted
// string and uniquely identifies at most one user.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// User represents a registered user. After registration the Password field
// only ever holds the bcrypt hash, never the plaintext.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// RegisterRequest is the registration body: credentials plus the display
// name carried in the extra field.
type RegisterRequest struct {
	Credentials Credentials `json:"credentials"`
	Extra       string      `json:"extra"`
}

// LoginRequest carries the password; the username comes from the URL.
type LoginRequest struct {
	Password string `json:"password"`
}

// AuthPayload is returned on successful login.
type AuthPayload struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
