package signedurl

import (
	"fmt"
	"net/url"
	"strings"
)

// RenderProxyConfig produces the reverse-proxy snippet embedding the
// verification contract and the shared secret. The output is deterministic
// for a given Config so regenerated snippets diff cleanly. The surrounding
// syntax targets nginx, but only the commented formula is contractual; any
// proxy that can recompute it may serve the files.
func RenderProxyConfig(cfg Config) string {
	locationPath := "/"
	if u, err := url.Parse(cfg.BaseURL); err == nil && u.Path != "" {
		locationPath = u.Path
	}
	if !strings.HasSuffix(locationPath, "/") {
		locationPath += "/"
	}

	var b strings.Builder
	b.WriteString("# Signed download verification - generated, regenerate after settings changes.\n")
	b.WriteString("#\n")
	b.WriteString("# Contract (must match the issuing application exactly):\n")
	b.WriteString("#   signature = base64url_nopad(hmac_sha256(secret_key, file_path + \"\\n\" + expires))\n")
	fmt.Fprintf(&b, "#   file_path = request path relative to %s\n", locationPath)
	b.WriteString("#   expires   = unix timestamp (seconds, decimal) from the ?expires= parameter\n")
	b.WriteString("# Deny the request when expires is in the past or the signature differs.\n")
	b.WriteString("# Compare signatures in constant time.\n")
	fmt.Fprintf(&b, "location %s {\n", locationPath)
	fmt.Fprintf(&b, "    alias %s/;\n", strings.TrimRight(cfg.DownloadPath, "/"))
	fmt.Fprintf(&b, "    set $signed_download_secret \"%s\";\n", cfg.SecretKey)
	b.WriteString("    set $signed_download_expires $arg_expires;\n")
	b.WriteString("    set $signed_download_signature $arg_signature;\n")
	b.WriteString("    # Hook the contract check here (njs/lua); return 403 on deny.\n")
	b.WriteString("}\n")
	return b.String()
}
