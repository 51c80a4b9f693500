package session

// Credentials is the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Role is a backend role assigned to a user.
type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// User is the profile returned alongside a fresh token.
type User struct {
	ID               int    `json:"id"`
	Username         string `json:"username"`
	Name             string `json:"name"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	EPS              string `json:"eps"`
	Semester         string `json:"semester"`
	Phone            int64  `json:"phone"`
	Plan             string `json:"plan"`
	Roles            []Role `json:"roles"`
	LunchBeneficiary bool   `json:"lunchBeneficiary"`
	SnackBeneficiary bool   `json:"snackBeneficiary"`
	IsActive         bool   `json:"isActive"`
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	User    User   `json:"userResponse"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

// VerifyResult is the body of a successful token verification.
type VerifyResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}
