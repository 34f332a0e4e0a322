package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// UniqueID es el identificador canónico derivado de un PlatformMapping:
// "platform:instance:role:accountId". No se persiste; round-trips al mismo
// mapping al parsearlo.
type UniqueID struct {
	Platform  string
	Instance  string
	Role      string
	AccountID int64
}

var uniqueIDRe = regexp.MustCompile(`^[\w]+:[\w]+:[\w]+:[\d]+$`)

// ErrInvalidUniqueID indica que el string no tiene el formato esperado.
var ErrInvalidUniqueID = fmt.Errorf("domain: invalid unique id")

// ParseUniqueID valida y descompone un unique id canónico.
func ParseUniqueID(s string) (UniqueID, error) {
	if !uniqueIDRe.MatchString(s) {
		return UniqueID{}, fmt.Errorf("%w: %q", ErrInvalidUniqueID, s)
	}
	parts := strings.Split(s, ":")
	acct, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return UniqueID{}, fmt.Errorf("%w: %q", ErrInvalidUniqueID, s)
	}
	return UniqueID{
		Platform:  parts[0],
		Instance:  parts[1],
		Role:      parts[2],
		AccountID: acct,
	}, nil
}

// String serializa el unique id en su forma canónica.
func (u UniqueID) String() string {
	return fmt.Sprintf("%s:%s:%s:%d", u.Platform, u.Instance, u.Role, u.AccountID)
}
