package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ds124wfegd/eventsphere/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const actorKey = "actor"

// Claims are issued by the identity provider; sub is the actor id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth resolves the actor from an HS256 bearer token. Requests without a
// token pass through anonymously; a bad token is rejected with 401.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			abortUnauthorized(c, "malformed authorization header")
			return
		}

		actor, err := ParseActor(strings.TrimSpace(raw), key)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

func ParseActor(raw string, key []byte) (entity.Actor, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return entity.Actor{}, err
	}

	if claims.Subject == "" {
		return entity.Actor{}, errors.New("token has no subject")
	}
	role, ok := entity.ParseRole(claims.Role)
	if !ok {
		return entity.Actor{}, errors.New("token has an unknown role")
	}
	return entity.Actor{ID: claims.Subject, Role: role}, nil
}

// RequireActor rejects anonymous requests.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ActorFrom(c); !ok {
			abortUnauthorized(c, entity.ErrUnauthenticated.Error())
			return
		}
		c.Next()
	}
}

// ActorFrom returns the authenticated actor, if any.
func ActorFrom(c *gin.Context) (entity.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return entity.Actor{}, false
	}
	actor, ok := v.(entity.Actor)
	return actor, ok
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
