package utils

import "golang.org/x/crypto/bcrypt"

// dummyHash is a bcrypt hash of an unguessable throwaway value.  When a login
// names an unknown user we still compare the candidate password against this
// hash so that the request takes roughly as long as a real check, which keeps
// response timing from revealing whether the username exists.
var dummyHash = func() string {
	b, err := bcrypt.GenerateFromPassword([]byte("login-auth-api.dummy"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(b)
}()

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// BurnPasswordCheck performs a bcrypt comparison that is guaranteed to fail.
// Call it on the lookup-miss path of login so the miss costs the same as a
// mismatch against a real hash.
func BurnPasswordCheck(plain string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plain))
}
