package bootstrap

import "github.com/gin-gonic/gin"

// SetGinMode keeps gin quiet on the terminal unless debugging.
func SetGinMode(env string) {
	switch env {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
}
