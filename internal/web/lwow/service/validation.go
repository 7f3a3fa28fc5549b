package service

import (
	"reflect"
	"strings"
	"sync"

	errors "github.com/Laisky/errors/v2"
	"github.com/go-playground/validator/v10"

	"github.com/Laisky/word-association/internal/web/lwow/model"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})

	return validate
}

// GenerateInput is the body of a generation request.
type GenerateInput struct {
	Words          []string `json:"words" validate:"len=26,dive,min=1,max=64"`
	Used           []string `json:"used,omitempty" validate:"omitempty,dive,min=1,max=64"`
	FavoriteLetter string   `json:"favoriteLetter,omitempty" validate:"omitempty,len=1"`
	PTwoHop        *float64 `json:"pTwoHop,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// StartGameInput is the body that opens a game.
type StartGameInput struct {
	FavoriteLetter string `json:"favoriteLetter" validate:"len=1"`
}

// RoundInput is the body of one round submission.
type RoundInput struct {
	Words []string `json:"words" validate:"len=26,dive,min=1,max=64"`
}

// FeedbackInput is the body of a feedback submission.
type FeedbackInput struct {
	Feedback  string `json:"feedback" validate:"min=1,max=5000"`
	SessionID string `json:"sessionId,omitempty" validate:"omitempty,max=64"`
}

func trimAll(words []string) []string {
	if words == nil {
		return nil
	}

	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.TrimSpace(w)
	}

	return out
}

// validateStruct runs the validator and converts failures
// into a *model.ValidationError listing every issue.
func validateStruct(in any) error {
	err := getValidator().Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate")
	}

	verr := &model.ValidationError{}
	for _, fe := range verrs {
		verr.Issues = append(verr.Issues, model.Issue{
			Path:    issuePath(fe.Namespace()),
			Message: issueMessage(fe),
		})
	}

	return verr
}

// issuePath drops the struct name from a namespace like "GenerateInput.words[3]".
func issuePath(ns string) string {
	if _, path, ok := strings.Cut(ns, "."); ok {
		return path
	}

	return ns
}

func issueMessage(fe validator.FieldError) string {
	isList := fe.Kind() == reflect.Slice
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		if isList {
			return "must contain exactly " + fe.Param() + " items"
		}
		return "must be exactly " + fe.Param() + " characters"
	case "min":
		if isList {
			return "must contain at least " + fe.Param() + " items"
		}
		if fe.Param() == "1" {
			return "must not be empty"
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		if isList {
			return "must contain at most " + fe.Param() + " items"
		}
		return "must be at most " + fe.Param() + " characters"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}
