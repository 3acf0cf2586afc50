// Package service exposes form validation over gRPC as formplan.v1.Validation.
package service

import (
	"context"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
	"github.com/msto63/formplan/foundation/core/i18n"
	mdwlog "github.com/msto63/formplan/foundation/core/log"
	"github.com/msto63/formplan/foundation/core/validation"
	"github.com/msto63/formplan/internal/forms"
)

// Config holds the collaborators of a Service
type Config struct {
	Forms    forms.Set
	Registry *validation.Registry
	Observer validation.Observer
	Messages validation.Messages
	Logger   *mdwlog.Logger
}

// localeDetector picks the best catalog locale for an Accept-Language
// style preference list
type localeDetector interface {
	DetectLocale(acceptLanguage string) string
}

// Service validates requests against a set of forms
type Service struct {
	forms    forms.Set
	registry *validation.Registry
	observer validation.Observer
	messages validation.Messages
	logger   *mdwlog.Logger
}

// NewService creates a service. Forms and Registry are required.
func NewService(cfg Config) (*Service, error) {
	if cfg.Forms == nil || cfg.Registry == nil {
		return nil, mdwerror.New("service needs forms and a registry").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("service.NewService")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = mdwlog.Discard()
	}
	messages := cfg.Messages
	if messages == nil {
		messages = i18n.Default()
	}

	return &Service{
		forms:    cfg.Forms,
		registry: cfg.Registry,
		observer: cfg.Observer,
		messages: messages,
		logger:   logger.WithName("service"),
	}, nil
}

// Forms returns the names of the served forms
func (s *Service) Forms() []string {
	return s.forms.Names()
}

// Validate runs the named form against req. Input problems come back as a
// failed Response; every returned error is a programmer or infrastructure
// error.
func (s *Service) Validate(ctx context.Context, req Request) (*Response, error) {
	if req.Form == "" {
		return nil, mdwerror.New("request needs a form name").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("service.Validate")
	}
	if req.Locale != "" {
		locale := req.Locale
		if d, ok := s.messages.(localeDetector); ok {
			locale = d.DetectLocale(locale)
		}
		ctx = i18n.WithLocale(ctx, locale)
	}

	opts := validation.DefaultOptions()
	opts.Logger = s.logger
	opts.Observer = s.observer
	opts.Messages = s.messages

	logger := s.logger.WithField("form", req.Form).WithRequestID(mdwlog.RequestIDFromContext(ctx))

	v, err := s.forms.Validator(req.Form, s.registry, opts)
	if err != nil {
		// unknown forms are logged at info, broken plans at error
		logger.LogError(err)
		return nil, err
	}

	outcome, err := v.ValidateData(ctx, req.Input, req.Refs)
	if err != nil {
		logger.LogError(err)
		return nil, err
	}

	if outcome.Ok() {
		return &Response{Ok: true, Values: outcome.Values()}, nil
	}
	report := outcome.Report()
	return &Response{
		Ok:     false,
		Fields: report.Fields(),
		Errors: report.Payload(),
	}, nil
}
