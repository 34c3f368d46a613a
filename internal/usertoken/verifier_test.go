package usertoken

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func TestNewVerifierRequiresJWKSURL(t *testing.T) {
	if _, err := NewVerifier(Config{}); err == nil {
		t.Fatal("expected error when jwks url is missing")
	}
}

func TestVerifySubjectRefreshesOnRotatedKid(t *testing.T) {
	oldKey := mustGenerateKey(t)
	newKey := mustGenerateKey(t)

	keys := map[string]*rsa.PrivateKey{"kid-1": oldKey}
	jwksServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=1")
		var set []map[string]string
		for kid, key := range keys {
			set = append(set, jwkFor(kid, &key.PublicKey))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": set})
	}))
	defer jwksServer.Close()

	v, err := NewVerifier(Config{JWKSURL: jwksServer.URL})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	signed := signUserToken(t, oldKey, "kid-1", "user-1", time.Now())
	if sub, err := v.VerifySubject(signed); err != nil || sub != "user-1" {
		t.Fatalf("verify with published kid: sub=%q err=%v", sub, err)
	}

	// Rotate signing keys; the verifier must refetch the JWKS when it
	// sees an unfamiliar kid instead of rejecting outright.
	keys = map[string]*rsa.PrivateKey{"kid-2": newKey}
	rotated := signUserToken(t, newKey, "kid-2", "user-2", time.Now())
	if sub, err := v.VerifySubject(rotated); err != nil || sub != "user-2" {
		t.Fatalf("verify after rotation: sub=%q err=%v", sub, err)
	}
}

func TestVerifySubjectRejectsFutureIssuedAt(t *testing.T) {
	key := mustGenerateKey(t)
	jwksServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{jwkFor("kid-1", &key.PublicKey)},
		})
	}))
	defer jwksServer.Close()

	v, err := NewVerifier(Config{JWKSURL: jwksServer.URL, Leeway: 5 * time.Second})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	signed := signUserToken(t, key, "kid-1", "user-1", time.Now().Add(2*time.Minute))
	if _, err := v.VerifySubject(signed); err == nil {
		t.Fatal("token issued in the future should be rejected")
	}
}

func mustGenerateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return key
}

func signUserToken(t *testing.T, key *rsa.PrivateKey, kid, subject string, issuedAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    defaultIssuer,
		Audience:  jwt.ClaimStrings{defaultAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(time.Now().Add(-time.Second)),
	})
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func jwkFor(kid string, pub *rsa.PublicKey) map[string]string {
	return map[string]string{
		"kty": "RSA",
		"kid": kid,
		"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}
}
