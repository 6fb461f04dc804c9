// Package gravatar derives the avatar URL assigned to every new account.
package gravatar

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// URL returns the gravatar image URL for an email address. Size, rating and
// default-image parameters are fixed so the same email always yields the
// same avatar.
func URL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=200&r=pg&d=mm", sum)
}
