// Package token issues and verifies the signed capability tokens that gate
// every gateway operation. Signing is RS256 so verification only needs the
// issuer's public key.
package token

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the verified claim set of a capability token.
type Claims struct {
	Issuer      string
	Subject     string
	Resource    string
	Permissions map[string]string
}

// Issue signs a capability token. The audience is encoded as a single-element
// list and the validity window starts now.
func Issue(key *rsa.PrivateKey, issuer, subject, audience string, validity time.Duration, resource string, permissions map[string]string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":         issuer,
		"aud":         []string{audience},
		"iat":         jwt.NewNumericDate(now),
		"nbf":         jwt.NewNumericDate(now),
		"exp":         jwt.NewNumericDate(now.Add(validity)),
		"sub":         subject,
		"resource":    resource,
		"permissions": permissions,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify decodes and verifies a capability token against a trust store of
// issuer name to public key.
//
// The verification key depends on the issuer, which is only known after
// decoding, so the payload is first parsed without signature verification
// solely to read the claimed issuer. Nothing from that pass is trusted; the
// second pass verifies the signature, expiry, not-before and audience with
// the issuer's key.
func Verify(trust map[string]*rsa.PublicKey, raw, audience string) (*Claims, error) {
	unverified := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, unverified); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	issuer, err := unverified.GetIssuer()
	if err != nil {
		return nil, fmt.Errorf("decode token issuer: %w", err)
	}

	key, ok := trust[issuer]
	if !ok {
		return nil, fmt.Errorf("unknown token issuer: %s", issuer)
	}

	verified := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(raw, verified, func(*jwt.Token) (interface{}, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}

	claims := &Claims{Issuer: issuer}
	claims.Subject, _ = verified["sub"].(string)
	claims.Resource, _ = verified["resource"].(string)
	if raw, ok := verified["permissions"].(map[string]interface{}); ok {
		claims.Permissions = make(map[string]string, len(raw))
		for k, v := range raw {
			claims.Permissions[k] = fmt.Sprintf("%v", v)
		}
	}
	return claims, nil
}
