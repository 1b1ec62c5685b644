package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// StudioPasswordHeader carries the shared password of the studio
const StudioPasswordHeader = "X-Studio-Password"

// passwordCacheTTL bounds how long a verified password skips the bcrypt comparison
const passwordCacheTTL = 5 * time.Minute

// passwordVerifier remembers the digest of the last verified password so that
// only the first request of each TTL window pays for bcrypt
type passwordVerifier struct {
	hash    []byte
	ttl     time.Duration
	compare func(hash, password []byte) error
	now     func() time.Time

	mu         sync.Mutex
	digest     [sha256.Size]byte
	validUntil time.Time
}

func newPasswordVerifier(passwordHash string, ttl time.Duration) *passwordVerifier {
	return &passwordVerifier{
		hash:    []byte(passwordHash),
		ttl:     ttl,
		compare: bcrypt.CompareHashAndPassword,
		now:     time.Now,
	}
}

func (v *passwordVerifier) verify(password string) bool {
	if password == "" {
		return false
	}
	digest := sha256.Sum256([]byte(password))
	now := v.now()

	v.mu.Lock()
	cached := now.Before(v.validUntil) && subtle.ConstantTimeCompare(digest[:], v.digest[:]) == 1
	v.mu.Unlock()
	if cached {
		return true
	}

	if v.compare(v.hash, []byte(password)) != nil {
		return false
	}
	v.mu.Lock()
	v.digest = digest
	v.validUntil = now.Add(v.ttl)
	v.mu.Unlock()
	return true
}

// StudioPassword requires the shared studio password when passwordHash is set.
// With an empty hash every request passes.
func StudioPassword(passwordHash string) gin.HandlerFunc {
	if passwordHash == "" {
		return func(c *gin.Context) { c.Next() }
	}
	return studioPassword(newPasswordVerifier(passwordHash, passwordCacheTTL))
}

func studioPassword(v *passwordVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !v.verify(c.GetHeader(StudioPasswordHeader)) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Missing or wrong studio password",
				},
			})
			return
		}
		c.Next()
	}
}
