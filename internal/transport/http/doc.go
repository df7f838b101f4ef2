// Package http implements the HTTP handlers for the marketing dashboard.
// Handlers stay thin: they parse and validate the request, call the
// service layer, and format the response. All business logic lives in
// internal/services and internal/dataset.
//
// Errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "Request validation failed",
//	    "instance": "/api/dashboard/overview"
//	}
//
// Handlers are tested with httptest against stubbed services.
package http
