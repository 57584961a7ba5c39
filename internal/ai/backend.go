package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/resumatch-api/internal/apperror"
)

// Spec is the fixed half of a call: the instruction that defines the task,
// the output schema and the validation rubric.
type Spec struct {
	Name        string
	Instruction string
	MaxTokens   int
}

// Backend is the narrow contract every provider implements. The returned
// message is a single JSON object; anything else is a schema error.
type Backend interface {
	Invoke(ctx context.Context, spec Spec, payload string) (json.RawMessage, error)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode unmarshals a backend response into out and validates its struct tags.
// Every failure is reported as apperror.ErrSchema.
func Decode(spec Spec, raw json.RawMessage, out any) error {
	if err := Unmarshal(spec, raw, out); err != nil {
		return err
	}
	return Validate(spec, out)
}

// Unmarshal is Decode without validation, for callers that clean the value up first.
func Unmarshal(spec Spec, raw json.RawMessage, out any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(out); err != nil {
		return apperror.NewSchema(fmt.Sprintf("%s: decoding response", spec.Name), err)
	}
	if dec.More() {
		return apperror.NewSchema(fmt.Sprintf("%s: trailing data after JSON object", spec.Name), nil)
	}
	return nil
}

// Validate runs struct-tag validation on an already decoded value.
func Validate(spec Spec, v any) error {
	if err := validate.Struct(v); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return apperror.NewInternal(fmt.Sprintf("%s: validating %T", spec.Name, v), err)
		}
		return apperror.NewSchema(fmt.Sprintf("%s: response failed validation", spec.Name), err)
	}
	return nil
}

// extractObject turns model text into a JSON object. Markdown fences are
// tolerated; prose around the object is not.
func extractObject(spec Spec, text string) (json.RawMessage, error) {
	text = stripCodeFences(strings.TrimSpace(text))
	if text == "" {
		return nil, apperror.NewSchema(spec.Name+": empty response", nil)
	}
	if !strings.HasPrefix(text, "{") || !json.Valid([]byte(text)) {
		return nil, apperror.NewSchema(spec.Name+": response is not a single JSON object", nil)
	}
	return json.RawMessage(text), nil
}

// stripCodeFences removes markdown ```json ... ``` wrappers
func stripCodeFences(text string) string {
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx != -1 {
			text = text[idx+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
		if idx := strings.LastIndex(text, "```"); idx != -1 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	return text
}
