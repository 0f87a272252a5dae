package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// OTPOptions selects the character classes an OTP may draw from.  The zero
// value produces digits-only codes, which is what the recovery flow uses.
type OTPOptions struct {
	UpperCaseAlphabets bool
	LowerCaseAlphabets bool
	SpecialChars       bool
}

const (
	otpDigits  = "0123456789"
	otpUpper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	otpLower   = "abcdefghijklmnopqrstuvwxyz"
	otpSpecial = "#!&@"
)

// GenerateOTP returns a random code of the given length built from digits plus
// any character classes enabled in opts.  Randomness comes from crypto/rand;
// the code is uniformly distributed over the selected alphabet.
func GenerateOTP(length int, opts OTPOptions) (string, error) {
	if length <= 0 {
		return "", errors.New("otp length must be positive")
	}
	alphabet := otpDigits
	if opts.UpperCaseAlphabets {
		alphabet += otpUpper
	}
	if opts.LowerCaseAlphabets {
		alphabet += otpLower
	}
	if opts.SpecialChars {
		alphabet += otpSpecial
	}

	max := big.NewInt(int64(len(alphabet)))
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = alphabet[n.Int64()]
	}
	return string(code), nil
}
