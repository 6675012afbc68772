package domain

type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Claims are the tenant claims carried by an auth token.
type Claims struct {
	UserID    string `json:"sub"`
	CompanyID string `json:"company_id"`
	Secret    string `json:"secret,omitempty"`
}
