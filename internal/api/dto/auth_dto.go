package dto

type UserDTO struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type RegisterDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type RegisterResponse struct {
	Ok       bool   `json:"ok"`
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries CartMerged so clients know whether to drop their session id.
// ExpiresIn is the access token lifetime in seconds.
type LoginResponse struct {
	Access     string  `json:"access"`
	Refresh    string  `json:"refresh"`
	ExpiresIn  int     `json:"expires_in"`
	User       UserDTO `json:"user"`
	CartMerged bool    `json:"cart_merged"`
}

type RefreshTokenDTO struct {
	Refresh string `json:"refresh"`
}

type RefreshTokenResponse struct {
	Access    string `json:"access"`
	ExpiresIn int    `json:"expires_in"`
}
