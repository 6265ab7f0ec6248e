package middleware

import (
	"errors"
	apiError "wartungsmanager/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func ErrorHandler(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next() // Execute the handler first

		// detect any errors
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err

			var apiErr *apiError.APIError

			// if it's our custom APIError
			if !errors.As(err, &apiErr) {
				// If it's a raw error we didn't wrap, treat as Internal
				apiErr = apiError.Internal(err)
			}

			entry := logger.WithField("path", c.FullPath())
			if apiErr.Status >= 500 {
				entry.WithError(apiErr.Internal).Error(apiErr.Message)
			} else {
				entry.WithError(apiErr.Internal).Info(apiErr.Message)
			}

			c.AbortWithStatusJSON(apiErr.Status, apiErr)
		}
	}
}
