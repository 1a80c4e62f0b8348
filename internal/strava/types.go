package strava

// TokenResponse is the provider's response to both the authorization-code
// and refresh-token grants.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // epoch seconds
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// Activity is one upstream activity record. Only the fields the aggregation
// needs are decoded; activities are never persisted individually.
type Activity struct {
	ID int64 `json:"id"`
	// StartDateLocal is an ISO date-time with the provider's local
	// timezone already baked in, e.g. "2024-03-01T06:12:00Z". The first
	// 10 characters are the calendar day key.
	StartDateLocal string `json:"start_date_local"`
	// MovingTime is the moving duration in seconds.
	MovingTime int `json:"moving_time"`
}
