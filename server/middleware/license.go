package middleware

import (
	"crypto/ed25519"

	"github.com/gin-gonic/gin"

	"gpcards/license"
	apperrors "gpcards/server/errors"
)

// LicenseGate 校验 X-License-Key 请求头的授权码。
// pub 为 nil 时不做校验（开发模式）。
func LicenseGate(pub ed25519.PublicKey) gin.HandlerFunc {
	machineCode := license.MachineCode()
	return func(c *gin.Context) {
		if pub == nil {
			c.Next()
			return
		}

		key := c.GetHeader("X-License-Key")
		if key == "" {
			abortWithError(c, apperrors.NewUnauthorizedError("缺少授权码", nil))
			return
		}
		if _, err := license.Verify(pub, key, machineCode); err != nil {
			abortWithError(c, apperrors.NewUnauthorizedError("授权码无效", err))
			return
		}
		c.Next()
	}
}

func abortWithError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode(), gin.H{
		"error":      appErr.UserMessage(),
		"request_id": GetRequestID(c),
	})
}
