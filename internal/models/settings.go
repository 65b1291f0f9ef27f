package models

// Settings is the persisted shell configuration edited from the settings window.
// An empty field means "not set"; an all-empty value is the first-run state.
type Settings struct {
	URL      string `json:"url,omitempty" validate:"omitempty,url"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// HasCredentials reports whether both username and password are present
func (s *Settings) HasCredentials() bool {
	return s != nil && s.Username != "" && s.Password != ""
}

// Credentials returns the login pair carried by the settings
func (s *Settings) Credentials() Credentials {
	if s == nil {
		return Credentials{}
	}
	return Credentials{Username: s.Username, Password: s.Password}
}

// Credentials is the username/password pair submitted to the remote login form
type Credentials struct {
	Username string
	Password string
}

// String masks the password so credentials can be logged safely
func (c Credentials) String() string {
	return "Credentials{Username: " + c.Username + ", Password: ***}"
}
