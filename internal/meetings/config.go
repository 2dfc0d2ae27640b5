package meetings

import "time"

type Config struct {
	// BaseURL of the Zoom-compatible REST API.
	BaseURL string `yaml:"baseUrl"`

	// OAuthURL is the token endpoint for server-to-server OAuth.
	OAuthURL string `yaml:"oauthUrl"`

	AccountID    string `yaml:"accountId"`
	ClientID     string `yaml:"clientId"`
	ClientSecret string `yaml:"clientSecret"`

	Timeout time.Duration `yaml:"timeout"`

	// Hosts is the fixed pool of licensed host accounts, in allocation order.
	Hosts []string `yaml:"hosts"`
}

func (c Config) Configured() bool {
	return c.AccountID != "" && c.ClientID != "" && c.ClientSecret != ""
}
