package response

import "github.com/gin-gonic/gin"

// RespondJSON writes the standard envelope. Controllers pass the HTTP code
// they derived from the error taxonomy; this helper never picks one.
func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}
