package auth

import (
	"fmt"
	"regexp"
	"strconv"
)

// Permissions is the typed form of a token's permissions claim. Regex claims
// are compiled once at verification time and anchored at the start, matching
// the issuing service's conventions.
type Permissions struct {
	TxType string
	// Realm restricts the realms the token may operate on.
	Realm *regexp.Regexp
	// Tx pins the token to one transaction id.
	Tx string
	// DocumentCount caps the documents per submission. Defaults to 1;
	// negative means unbounded.
	DocumentCount int
	// ResourceType and ResourceID restrict the references a submission may
	// carry. A ResourceType claim also makes references mandatory.
	ResourceType *regexp.Regexp
	ResourceID   *regexp.Regexp
	// Document restricts the document names of delete and get-document
	// operations.
	Document *regexp.Regexp
}

// ParsePermissions builds the typed claims from the raw permissions map of a
// verified token.
func ParsePermissions(raw map[string]string) (*Permissions, error) {
	if raw == nil {
		return nil, fmt.Errorf("no permissions available")
	}

	perms := &Permissions{
		TxType:        raw["txType"],
		Tx:            raw["tx"],
		DocumentCount: 1,
	}
	if perms.TxType == "" {
		return nil, fmt.Errorf("txType not specified")
	}

	if count, ok := raw["documentCount"]; ok {
		// Lenient on the numeric form: the claim may arrive as "2" or "2.0"
		// depending on how the issuer encoded it.
		parsed, err := strconv.ParseFloat(count, 64)
		if err != nil {
			return nil, fmt.Errorf("documentCount is not a number: %q", count)
		}
		perms.DocumentCount = int(parsed)
	}

	var err error
	if perms.Realm, err = compileAnchored(raw, "realm"); err != nil {
		return nil, err
	}
	if perms.ResourceType, err = compileAnchored(raw, "resourceType"); err != nil {
		return nil, err
	}
	if perms.ResourceID, err = compileAnchored(raw, "resourceId"); err != nil {
		return nil, err
	}
	if perms.Document, err = compileAnchored(raw, "document"); err != nil {
		return nil, err
	}
	return perms, nil
}

func compileAnchored(raw map[string]string, claim string) (*regexp.Regexp, error) {
	pattern, ok := raw[claim]
	if !ok {
		return nil, nil
	}
	compiled, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, fmt.Errorf("invalid %s pattern: %w", claim, err)
	}
	return compiled, nil
}
