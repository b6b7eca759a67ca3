// Package services holds the business rules of the directory: identity
// uniqueness, authorship validity, soft deletion and search.
package services

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"dms/internal/apperr"
	"dms/pkg/password"
)

// Transactor runs fn inside one store transaction. *store.Store implements it.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher delivers domain events after a mutation has committed.
// pkg/rabbitmq.Publisher implements it.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Routing keys of the published domain events.
const (
	EventProfileRegistered = "profile.registered"
	EventProfileUpdated    = "profile.updated"
	EventProfileDeleted    = "profile.deleted"
	EventProfilePurged     = "profile.purged"
	EventDocumentCreated   = "document.created"
	EventDocumentUpdated   = "document.updated"
	EventDocumentDeleted   = "document.deleted"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateInput runs the struct's validate tags and reports failures as ErrValidation.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Validation("%v", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email address")
		case "max":
			msgs = append(msgs, fe.Field()+" must be at most "+fe.Param()+" characters")
		case "min":
			msgs = append(msgs, fe.Field()+" must be at least "+fe.Param()+" characters")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return apperr.Validation("%s", strings.Join(msgs, "; "))
}

// hashPassword checks the byte length bcrypt can take before hashing.
func hashPassword(h password.Hasher, plaintext string) (string, error) {
	if len(plaintext) > password.MaxBytes {
		return "", apperr.Validation("password must be at most %d bytes", password.MaxBytes)
	}
	hashed, err := h.Hash(plaintext)
	if errors.Is(err, password.ErrTooLong) {
		return "", apperr.Validation("%v", err)
	}
	return hashed, err
}

// observe logs err according to its kind and returns it unchanged.
func observe(log *zap.Logger, op string, err error) error {
	if err == nil {
		return nil
	}
	switch apperr.KindOf(err) {
	case apperr.KindStore, apperr.KindUnknown:
		log.Error(op+" failed", zap.Error(err))
	default:
		log.Debug(op+" rejected", zap.Error(err))
	}
	return err
}

// publish sends an event when a publisher is configured. Failures are logged, never returned.
func publish(ctx context.Context, log *zap.Logger, events EventPublisher, key string, payload any) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, key, payload); err != nil {
		log.Warn("failed to publish event", zap.String("routing_key", key), zap.Error(err))
		return
	}
	log.Debug("published event", zap.String("routing_key", key))
}
