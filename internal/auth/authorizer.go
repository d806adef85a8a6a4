// Package auth matches verified capability-token claims against requested
// operations. Failures are collapsed to one generic message at the boundary;
// the specific cause is only logged.
package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/docriver/gateway/internal/errs"
	"github.com/docriver/gateway/internal/manifest"
	"github.com/docriver/gateway/internal/token"
	"github.com/sirupsen/logrus"
)

const (
	// RootIssuer is trusted across all realms; every other issuer is only
	// trusted for the realm bearing its name.
	RootIssuer = "docriver"
	// PrincipalUnknown is stamped when authorization is disabled.
	PrincipalUnknown = "unknown"
)

var bearerSplit = regexp.MustCompile(`\s+`)

// Authorizer verifies bearer tokens against a trust store and checks their
// permission claims per operation. A nil or empty trust store disables
// authorization entirely; that is the documented escape hatch for
// non-production deployments.
type Authorizer struct {
	trust    map[string]*rsa.PublicKey
	audience string
}

func NewAuthorizer(trust map[string]*rsa.PublicKey, audience string) *Authorizer {
	return &Authorizer{
		trust:    trust,
		audience: audience,
	}
}

// Enabled reports whether a trust store is configured.
func (a *Authorizer) Enabled() bool {
	return len(a.trust) > 0
}

// AuthorizeSubmit authorizes a submission manifest and returns the principal
// to stamp on it.
func (a *Authorizer) AuthorizeSubmit(realm string, m *manifest.Manifest, bearer string) (string, error) {
	if !a.Enabled() {
		return PrincipalUnknown, nil
	}

	claims, perms, err := a.verify(realm, bearer)
	if err != nil {
		return "", a.deny(realm, err)
	}

	if err := func() error {
		if perms.TxType != "submit" {
			return fmt.Errorf("transaction type invalid")
		}
		if perms.Tx != "" && perms.Tx != m.Tx {
			return fmt.Errorf("tx invalid")
		}
		if perms.DocumentCount >= 0 && len(m.Documents) > perms.DocumentCount {
			return fmt.Errorf("document count exceeds allowed")
		}

		for _, document := range m.Documents {
			references := append(append([]manifest.Reference{}, m.References...), document.References...)
			if len(references) == 0 && perms.ResourceType != nil {
				return fmt.Errorf("references are required")
			}
			for _, ref := range references {
				if perms.ResourceType != nil && !perms.ResourceType.MatchString(ref.ResourceType) {
					return fmt.Errorf("resourceType does not match")
				}
				if perms.ResourceID != nil && !perms.ResourceID.MatchString(ref.ResourceID) {
					return fmt.Errorf("resourceId does not match")
				}
			}
		}
		return nil
	}(); err != nil {
		return "", a.deny(realm, err)
	}

	logrus.Infof("authorized transaction: %s - realm: %s, subject: %s, issuer: %s", m.Tx, realm, claims.Subject, claims.Issuer)
	return claims.Subject, nil
}

// AuthorizeDelete authorizes a deletion request and returns the principal.
func (a *Authorizer) AuthorizeDelete(realm string, m *manifest.Manifest, bearer string) (string, error) {
	if !a.Enabled() {
		return PrincipalUnknown, nil
	}

	claims, perms, err := a.verify(realm, bearer)
	if err != nil {
		return "", a.deny(realm, err)
	}

	if perms.TxType != "delete" {
		return "", a.deny(realm, fmt.Errorf("transaction type invalid"))
	}
	if perms.Document != nil {
		for _, document := range m.Documents {
			if !perms.Document.MatchString(document.Name) {
				return "", a.deny(realm, fmt.Errorf("document name mismatch"))
			}
		}
	}
	return claims.Subject, nil
}

// AuthorizeGetDocument authorizes reading one document back.
func (a *Authorizer) AuthorizeGetDocument(realm, document, bearer string) (string, error) {
	if !a.Enabled() {
		return PrincipalUnknown, nil
	}

	claims, perms, err := a.verify(realm, bearer)
	if err != nil {
		return "", a.deny(realm, err)
	}

	if perms.TxType != "get-document" {
		return "", a.deny(realm, fmt.Errorf("transaction type invalid"))
	}
	if perms.Document == nil || !perms.Document.MatchString(document) {
		return "", a.deny(realm, fmt.Errorf("document name mismatch"))
	}
	return claims.Subject, nil
}

// AuthorizeGetEvents authorizes listing a realm's transaction events.
func (a *Authorizer) AuthorizeGetEvents(realm, bearer string) (string, error) {
	if !a.Enabled() {
		return PrincipalUnknown, nil
	}

	claims, perms, err := a.verify(realm, bearer)
	if err != nil {
		return "", a.deny(realm, err)
	}

	if perms.TxType != "get-events" {
		return "", a.deny(realm, fmt.Errorf("transaction type invalid"))
	}
	return claims.Subject, nil
}

// verify runs the checks shared by every operation: token shape, signature,
// issuer trust and the realm claim.
func (a *Authorizer) verify(realm, bearer string) (*token.Claims, *Permissions, error) {
	raw, err := stripBearer(bearer)
	if err != nil {
		return nil, nil, err
	}

	claims, err := token.Verify(a.trust, raw, a.audience)
	if err != nil {
		return nil, nil, err
	}
	if claims.Issuer != realm && claims.Issuer != RootIssuer {
		return nil, nil, fmt.Errorf("invalid issuer %q for realm %q", claims.Issuer, realm)
	}

	perms, err := ParsePermissions(claims.Permissions)
	if err != nil {
		return nil, nil, err
	}
	if perms.Realm != nil && !perms.Realm.MatchString(realm) {
		return nil, nil, fmt.Errorf("realm does not match")
	}
	return claims, perms, nil
}

// stripBearer enforces the exact "Bearer <token>" form. Shape errors are
// validation errors, not authorization errors: there is no claim set to judge.
func stripBearer(bearer string) (string, error) {
	if bearer == "" {
		return "", errs.Validationf("Token not specified")
	}
	parts := bearerSplit.Split(bearer, -1)
	if len(parts) != 2 {
		return "", errs.Validationf("Invalid token format")
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", errs.Validationf("Invalid token type %s", parts[0])
	}
	return parts[1], nil
}

// deny logs the real cause and hands the caller the uniform failure. Shape
// errors pass through as validation errors.
func (a *Authorizer) deny(realm string, cause error) error {
	var validation *errs.ValidationError
	if errors.As(cause, &validation) {
		return cause
	}
	logrus.Warnf("authorization failure - realm: %s, cause: %v", realm, cause)
	return errs.NotAuthorized()
}
