package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"daycal/internal/ics"
	"daycal/internal/model"
)

// exportRequest is the POST /api/export body: a bundle plus the filter.
type exportRequest struct {
	model.Bundle
	Filter ics.Filter `json:"filter"`
}

func (s *Server) decodeExport(r *http.Request) (exportRequest, error) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	if err := s.validate.Struct(req); err != nil {
		return req, errors.New(formatValidationErrors(err))
	}
	return req, nil
}

// formatValidationErrors turns validator output into "field tag" pairs.
func formatValidationErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := "is invalid"
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "oneof":
			msg = "must be one of " + strings.Join(strings.Fields(fe.Param()), ", ")
		}
		parts = append(parts, strings.ToLower(fe.Namespace())+" "+msg)
	}
	return strings.Join(parts, ", ")
}
