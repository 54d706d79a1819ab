package app

import "github.com/gin-gonic/gin"

// Module defines the contract for a self-registering business module.
// public is the /api group; protected is the same prefix behind the auth gate.
type Module interface {
	RegisterRoutes(public *gin.RouterGroup, protected *gin.RouterGroup)
}
