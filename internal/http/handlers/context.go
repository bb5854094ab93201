package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/aiig/deliverables-backend/internal/platform/dbctx"
)

// reqCtx wraps the request context for the service layer. Handlers never
// open transactions themselves; services do where they need one.
func reqCtx(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}
