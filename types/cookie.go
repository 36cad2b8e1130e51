package types

// Cookie is one authentication entry of a credential bundle.
// Expires is epoch seconds; zero means a session cookie.
type Cookie struct {
	Domain  string `json:"domain"`
	Name    string `json:"name"`
	Value   string `json:"value"`
	Path    string `json:"path"`
	Secure  bool   `json:"secure"`
	Expires int64  `json:"expires,omitempty"`
}

// CookieBundle is a caller-supplied set of cookies used to access
// gated content. It only ever lives on disk for the duration of a
// single engine invocation.
type CookieBundle struct {
	Cookies []Cookie `json:"cookies" binding:"required"`
}
