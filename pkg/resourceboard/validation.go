package resourceboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// PublishRequest is the payload of a publish operation. It is decoded as a
// raw key set so that unexpected fields can be reported by name instead of
// being silently dropped.
type PublishRequest map[string]json.RawMessage

// Validate checks the create payload. All failing fields are collected
// into a single validation.Errors; the topic field is checked separately
// because resolving it needs the topic directory.
func (req CreateResourceRequest) Validate() validation.Errors {
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Title, validation.Required),
		validation.Field(&req.URL, validation.Required, validation.By(absoluteURL)),
	)
	if err == nil {
		return validation.Errors{}
	}
	errs, ok := err.(validation.Errors)
	if !ok {
		return validation.Errors{"title": err}
	}
	return errs
}

// Validate checks the publish payload. The only acceptable shape is a
// single draft key carrying the JSON literal false; every other key is
// rejected by name and every violation is reported together.
func (p PublishRequest) Validate() validation.Errors {
	errs := validation.Errors{}
	for field, raw := range p {
		if field != "draft" {
			errs[field] = fmt.Errorf("%s is not allowed", field)
			continue
		}
		// Only the JSON literal false is accepted; null decodes into a
		// bool without error, so the raw token is matched directly.
		if !bytes.Equal(bytes.TrimSpace(raw), []byte("false")) {
			errs[field] = errors.New("draft must be [false]")
		}
	}
	if _, ok := p["draft"]; !ok {
		errs["draft"] = errors.New("draft must be [false]")
	}
	return errs
}

func absoluteURL(value interface{}) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return errors.New("must be a valid absolute URL")
	}
	return nil
}

// asValidationError converts collected field errors into the service's
// error type. Returns nil when there is nothing to report.
func asValidationError(errs validation.Errors) error {
	if len(errs) == 0 {
		return nil
	}
	fields := make(map[string]string, len(errs))
	for field, err := range errs {
		fields[field] = err.Error()
	}
	return &ValidationError{Fields: fields}
}
