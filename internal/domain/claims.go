package domain

// AuthClaims are identity-provider claims injected by the upstream gateway
// after it has verified the caller. They are informational only.
type AuthClaims map[string]any

// Identity returns the caller's email, falling back to the Cognito username.
func (c AuthClaims) Identity() string {
	for _, key := range []string{"email", "cognito:username"} {
		if v, ok := c[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
