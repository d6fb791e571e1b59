package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypts the opaque password for the offline login check; the
// remote service never sees the hash.
func HashPassword(pw string) string {
	b, _ := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b)
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
