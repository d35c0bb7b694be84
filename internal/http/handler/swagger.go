package handler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/swaggo/swag"
)

// ConfigureSwagger points the generated spec at the public base URL.
// Call it once before the server starts; the spec is shared by all requests.
func ConfigureSwagger(spec *swag.Spec, baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid base url %q", baseURL)
	}
	spec.Host = u.Host
	spec.Schemes = []string{u.Scheme}
	spec.BasePath = "/" + strings.Trim(u.Path, "/")
	return nil
}
