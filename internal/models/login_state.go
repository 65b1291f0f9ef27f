package models

// PageLoginState is the classification of a freshly loaded page. It is derived on
// every DOM-ready event and never persisted.
type PageLoginState int

const (
	// NotLoginFailed means no visible login failure indicator was found
	NotLoginFailed PageLoginState = iota
	// LoginFailed means the failure indicator is present and rendered
	LoginFailed
)

func (s PageLoginState) String() string {
	switch s {
	case LoginFailed:
		return "login-failed"
	default:
		return "not-login-failed"
	}
}
