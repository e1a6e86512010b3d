package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bloghive/internal/middleware"
	"bloghive/internal/services"
)

// getActor: маршруты за AuthMiddleware всегда имеют пользователя в контексте
func getActor(c *gin.Context) services.Actor {
	a, _ := middleware.Actor(c)
	return a
}

// pathID: положительное целое из пути
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param(name)))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) int {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
