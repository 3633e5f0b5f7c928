// Package ui embeds the static assets served by the HTTP layer. The only
// asset today is the configuration page, which builds the addon install
// link entirely client-side so credentials never pass through this service
// outside of resolution requests.
package ui

import _ "embed"

//go:embed static/configure.html
var configurePage []byte

// ConfigurePage returns the configuration page HTML.
func ConfigurePage() []byte {
	return configurePage
}
