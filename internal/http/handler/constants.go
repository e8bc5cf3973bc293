package handler

const (
	jsonKeyError = "error"

	queryRedirect = "redirect"

	statusOK       = "ok"
	statusDegraded = "degraded"

	msgContentTypeJSONRequired = "Content-Type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgInvalidRedirectValue    = "redirect must be true or false"
)
