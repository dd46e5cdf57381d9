package util

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ExposeErrors adds the internal cause to error envelopes, only set in development.
var ExposeErrors = false

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type ListResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
	Count   int         `json:"count"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Pages   int         `json:"pages"`
}

func SuccessResponse(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

/*
* Build the failure envelope from the error kind
* Internal causes only leave the server when ExposeErrors is on
 */
func FailedResponse(err error) Response {
	resp := Response{Success: false, Message: PublicMessage(err)}
	if ExposeErrors && KindOf(err) == KindInternal {
		resp.Error = err.Error()
	}
	return resp
}

func Pages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

func NewListResponse(data interface{}, count int, total int64, page, limit int) ListResponse {
	return ListResponse{
		Success: true,
		Data:    data,
		Count:   count,
		Total:   total,
		Page:    page,
		Pages:   Pages(total, limit),
	}
}

func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse(message, data))
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse(message, data))
}

func List(c *gin.Context, resp ListResponse) {
	c.JSON(http.StatusOK, resp)
}

// Fail maps err onto the envelope and aborts the chain.
func Fail(c *gin.Context, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, FailedResponse(err))
}
