package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes a plaintext credential for storage on the account row.
// A cost outside bcrypt's supported range falls back to the library default
// rather than failing registration.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword checks a sign-in attempt against the stored hash. The
// error is a mismatch signal only; callers map it to the uniform
// invalid-credentials rejection.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
