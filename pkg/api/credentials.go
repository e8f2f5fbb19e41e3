package api

import (
	"encoding/base64"
)

// Credentials authenticate requests. A token takes precedence over login and password.
type Credentials struct {
	Login    string
	Password string
	Token    string
	Bearer   bool // send the token with the Bearer scheme instead of "token"
}

// TokenCredentials returns credentials for a personal access or OAuth token.
func TokenCredentials(token string) Credentials {
	return Credentials{Token: token}
}

// BasicCredentials returns credentials for basic authentication.
func BasicCredentials(login, password string) Credentials {
	return Credentials{Login: login, Password: password}
}

// IsAnonymous reports whether no credentials are set.
func (c Credentials) IsAnonymous() bool {
	return c.Token == "" && c.Login == ""
}

// AuthorizationHeader returns the value of the Authorization header, or an empty string
// for anonymous access.
func (c Credentials) AuthorizationHeader() string {
	switch {
	case c.Token != "" && c.Bearer:
		return "Bearer " + c.Token
	case c.Token != "":
		return "token " + c.Token
	case c.Login != "":
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.Login+":"+c.Password))
	}
	return ""
}
