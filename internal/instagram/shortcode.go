package instagram

import (
	"fmt"
	"math/big"
	"strings"
)

const shortcodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// MediaIDFromShortcode decodes a post shortcode into its numeric media id.
// Shortcodes are base64 over a URL-safe alphabet; private posts append a
// suffix after the first 11 characters that is not part of the id.
func MediaIDFromShortcode(code string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("empty shortcode")
	}
	if len(code) > 11 {
		code = code[:11]
	}
	id := new(big.Int)
	base := big.NewInt(64)
	for _, r := range code {
		idx := strings.IndexRune(shortcodeAlphabet, r)
		if idx < 0 {
			return "", fmt.Errorf("invalid shortcode character %q", r)
		}
		id.Mul(id, base)
		id.Add(id, big.NewInt(int64(idx)))
	}
	return id.String(), nil
}
