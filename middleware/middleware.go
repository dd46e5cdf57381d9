package middleware

import (
	"context"
	"strings"
	"time"

	"HospitalHub/role"
	"HospitalHub/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	actorKey     = "actor"
	requestIDKey = "requestId"

	RequestIDHeader = "X-Request-ID"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (role.Actor, error)
}

type PermissionChecker interface {
	HasPermission(ctx context.Context, actor role.Actor, permission string) (bool, error)
}

/*
* Read the bearer token from the Authorization header
* Resolve it to an actor and keep it on the context
 */
func Auth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			util.Fail(c, util.UnauthorizedError(util.AUTHORIZATION_HEADER_REQUIRED))
			return
		}
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			util.Fail(c, util.UnauthorizedError(util.INVALID_AUTHORIZATION_HEADER))
			return
		}
		actor, err := auth.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			log.Debug().Err(err).Str("path", c.FullPath()).Msg("authentication failed")
			util.Fail(c, err)
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(roles ...role.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			util.Fail(c, util.UnauthorizedError(util.AUTHORIZATION_HEADER_REQUIRED))
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		log.Info().Str("role", string(actor.Role)).Str("path", c.FullPath()).Msg("role not permitted")
		util.Fail(c, util.ForbiddenError(util.ROLE_NOT_PERMITTED))
	}
}

/*
* Admin routes also check the permission bag
* Other roles are refused outright
 */
func RequirePermission(checker PermissionChecker, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			util.Fail(c, util.UnauthorizedError(util.AUTHORIZATION_HEADER_REQUIRED))
			return
		}
		allowed, err := checker.HasPermission(c.Request.Context(), actor, permission)
		if err != nil {
			util.Fail(c, err)
			return
		}
		if !allowed {
			util.Fail(c, util.ForbiddenError(util.PERMISSION_DENIED))
			return
		}
		c.Next()
	}
}

func ActorFrom(c *gin.Context) (role.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return role.Actor{}, false
	}
	actor, ok := v.(role.Actor)
	return actor, ok
}

// RequestID keeps an incoming X-Request-ID or makes a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var evt *zerolog.Event
		switch {
		case status >= 500:
			evt = log.Error()
		case status >= 400:
			evt = log.Warn()
		default:
			evt = log.Info()
		}
		evt.Str("requestId", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("request")
	}
}

// Recovery answers a panic with the generic failure envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error().Interface("panic", recovered).Str("requestId", RequestIDFrom(c)).Str("path", c.Request.URL.Path).Msg("panic recovered")
		util.Fail(c, util.InternalError(nil))
	})
}
