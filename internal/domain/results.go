package domain

// Response messages shared by the ledger engine, auth service, and handlers.
// The exact strings are part of the API contract.
const (
	MsgSuccess             = "success"
	MsgAccountNotFound     = "Account not found"
	MsgReceiverNotFound    = "Receiver account not found"
	MsgInsufficientFunds   = "Insufficient Funds"
	MsgSameAccountTransfer = "Can't transfer to same account"
	MsgInvalidAmount       = "Invalid Amount"
	MsgInvalidUser         = "Invalid user id"
	MsgUserExists          = "User with email address already exists"
	MsgLoginError          = "Invalid email or password"
	MsgBlacklisted         = "User has been blacklisted"
	MsgBodyRequired        = "Request body is required"
	MsgAddressRequired     = "User Address is Required"
	MsgInvalidEmail        = "Invalid Email Address"
	MsgCityRequired        = "City is Required"
	MsgInvalidDOB          = "Date of Birth is Invalid"
	MsgInvalidPassword     = "Password must be more than 6 characters"
	MsgInvalidName         = "Name is Required"
	MsgLgaRequired         = "LGA ID is required"
	MsgNoToken             = "Access denied. No token provided."
	MsgInvalidToken        = "Invalid token."
	MsgTooManyLogins       = "Too many login attempts. Try again shortly."
)

// LedgerResult is the typed outcome of a ledger operation. Expected business
// conditions (missing account, insufficient funds, self-transfer) travel here
// rather than as errors; only unexpected failures propagate as Go errors.
type LedgerResult struct {
	StatusCode int           `json:"-"`
	Message    string        `json:"message"`
	Account    *Account      `json:"account,omitempty"`
	Owner      *OwnerProfile `json:"user,omitempty"`
}

// AuthResult is the typed outcome of register and login operations.
type AuthResult struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	User       *User  `json:"user,omitempty"`
	Token      string `json:"token,omitempty"`
}
