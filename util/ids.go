package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomSuffix(n int) string {
	var b strings.Builder
	limit := big.NewInt(int64(len(idAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			idx = big.NewInt(time.Now().UnixNano() % int64(len(idAlphabet)))
		}
		b.WriteByte(idAlphabet[idx.Int64()])
	}
	return b.String()
}

// NewAppointmentID returns APT + unix millis + 5 random uppercase alphanumerics.
func NewAppointmentID(now time.Time) string {
	return fmt.Sprintf("APT%013d%s", now.UnixMilli(), randomSuffix(5))
}

func FormatAdminID(seq int64) string {
	return fmt.Sprintf("ADM%04d", seq)
}

/*
* Take the first three letters of the name
* Fall back to DEP when the name has no letters
 */
func DepartmentCodeBase(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			if b.Len() == 3 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "DEP"
	}
	return b.String()
}

func ParseObjectID(value string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(value))
	if err != nil {
		return primitive.NilObjectID, ValidationError(INVALID_ID)
	}
	return id, nil
}
