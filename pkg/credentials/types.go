package credentials

// User is the authenticated identity returned by the workspace API. The client
// passes it through unchanged.
type User struct {
	ID    int64  `json:"id" toml:"id"`
	Email string `json:"email" toml:"email"`
	Name  string `json:"name" toml:"name"`
}

// Credentials is a snapshot of the current session.
// AccessToken and User are either both set or both empty.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	User         *User
}

// Authenticated reports whether the snapshot carries an access token.
func (c Credentials) Authenticated() bool {
	return c.AccessToken != "" && c.User != nil
}

// CanRefresh reports whether the snapshot has what a token refresh needs.
func (c Credentials) CanRefresh() bool {
	return c.RefreshToken != "" && c.User != nil
}
