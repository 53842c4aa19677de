package server

import (
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/agrichar/internal/auth"
	"github.com/smallbiznis/agrichar/internal/idempotency"
	"github.com/smallbiznis/agrichar/internal/ownercontext"
	"go.uber.org/zap"
)

const contextOwnerIDKey = "owner_id"

// OwnerRequired resolves the bearer token into the request owner.
func (s *Server) OwnerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		owner, err := s.verifier.Verify(raw)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextOwnerIDKey, owner.ID)
		c.Request = c.Request.WithContext(ownercontext.WithOwner(c.Request.Context(), owner))
		c.Next()
	}
}

// RequirePermission checks the owner's role against the casbin policy.
func (s *Server) RequirePermission(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := ownercontext.OwnerFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if err := s.authzSvc.Authorize(c.Request.Context(), owner, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// Idempotent holds the request's Idempotency-Key for scope. The key is
// released again when the handler fails so the client can retry.
func (s *Server) Idempotent(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := ownercontext.OwnerIDFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claim, err := s.guard.Begin(c.Request.Context(), ownerID, scope, c.GetHeader(idempotency.HeaderKey))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Next()

		if claim == nil {
			return
		}
		if len(c.Errors) > 0 || c.Writer.Status() >= 400 {
			s.guard.Release(c.Request.Context(), claim)
			s.log.Debug("idempotency key released",
				zap.String("scope", scope),
				zap.Int("status", c.Writer.Status()),
			)
		}
	}
}
