package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimit ограничивает частоту интеракций: не более perMinute запросов
// от одного актора (или IP, если актор не представился). Счетчики живут в
// Redis минутными окнами; при недоступном Redis запросы пропускаются.
func RateLimit(client *redis.Client, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || perMinute <= 0 {
			c.Next()
			return
		}

		actor := c.GetHeader("X-Actor-ID")
		if actor == "" {
			actor = c.ClientIP()
		}
		key := fmt.Sprintf("lfg:ratelimit:%s", actor)

		count, err := client.Incr(c.Request.Context(), key).Result()
		if err == nil {
			if count == 1 {
				client.Expire(c.Request.Context(), key, time.Minute)
			}
			if count > int64(perMinute) {
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"error": "Too many requests. Please try again later.",
				})
				return
			}
		}

		c.Next()
	}
}
