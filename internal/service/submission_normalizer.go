package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/files-coaching/contact-relay/internal/models"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

type submissionField struct {
	name   string
	assign func(*models.Submission, string)
}

// submissionFields lists every accepted form field and where it lands.
var submissionFields = []submissionField{
	{name: "email", assign: func(s *models.Submission, v string) { s.Email = v }},
	{name: "prenom", assign: func(s *models.Submission, v string) { s.FirstName = v }},
	{name: "age", assign: func(s *models.Submission, v string) { s.Age = v }},
	{name: "poids", assign: func(s *models.Submission, v string) { s.Weight = v }},
	{name: "taille", assign: func(s *models.Submission, v string) { s.Height = v }},
	{name: "niveau", assign: func(s *models.Submission, v string) { s.Level = v }},
	{name: "objectif", assign: func(s *models.Submission, v string) { s.Goal = v }},
	{name: "dispo", assign: func(s *models.Submission, v string) { s.Schedule = v }},
	{name: "lieu", assign: func(s *models.Submission, v string) { s.Location = v }},
	{name: "materiel", assign: func(s *models.Submission, v string) { s.Equipment = v }},
}

const multiValueSeparator = ", "

var (
	submissionSchema = jsonschema.MustCompileString("submission.schema.json", mustMarshalSchema(map[string]interface{}{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
	}))
	// fieldSchema accepts a scalar or a list of scalars, such as repeated checkboxes.
	fieldSchema = jsonschema.MustCompileString("submission_field.schema.json", mustMarshalSchema(map[string]interface{}{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    []string{"string", "number", "boolean", "null", "array"},
		"items": map[string]interface{}{
			"type": []string{"string", "number", "boolean"},
		},
	}))
)

func mustMarshalSchema(schema map[string]interface{}) string {
	raw, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("submission schema: %v", err))
	}
	return string(raw)
}

// SubmissionNormalizer turns a raw request body into a Submission.
// An unreadable body yields an empty Submission; a single badly typed field is dropped on its own.
type SubmissionNormalizer struct {
	logger zerolog.Logger
}

// NewSubmissionNormalizer constructs a normalizer.
func NewSubmissionNormalizer(logger zerolog.Logger) *SubmissionNormalizer {
	return &SubmissionNormalizer{logger: logger.With().Str("component", "submission_normalizer").Logger()}
}

// Normalize parses body according to contentType.
func (n *SubmissionNormalizer) Normalize(contentType string, body []byte) models.Submission {
	lowered := strings.ToLower(contentType)

	var (
		values map[string]string
		err    error
	)
	switch {
	case strings.Contains(lowered, contentTypeJSON):
		values, err = n.parseJSONFields(body)
	case strings.Contains(lowered, contentTypeForm):
		values = n.parseFormFields(body)
	default:
		values, err = n.parseJSONFields(body)
	}

	if err != nil {
		n.logger.Warn().Err(err).Str("content_type", contentType).Msg("unreadable submission body, continuing with empty fields")
		return models.Submission{}
	}

	var submission models.Submission
	for _, field := range submissionFields {
		field.assign(&submission, cleanField(field.name, values[field.name]))
	}
	return submission
}

func (n *SubmissionNormalizer) parseJSONFields(body []byte) (map[string]string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]string{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var raw interface{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json body: %w", err)
	}
	var trailing json.RawMessage
	if err := decoder.Decode(&trailing); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode json body: unexpected data after the first value")
	}
	if err := submissionSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("validate json body: %w", err)
	}

	object, _ := raw.(map[string]interface{})
	values := make(map[string]string, len(submissionFields))
	for _, field := range submissionFields {
		value, present := object[field.name]
		if !present {
			continue
		}
		if err := fieldSchema.Validate(value); err != nil {
			n.logger.Warn().Err(err).Str("field", field.name).Msg("dropping submission field with unsupported type")
			continue
		}
		values[field.name] = jsonFieldString(value)
	}
	return values, nil
}

func jsonFieldString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if part := strings.TrimSpace(jsonFieldString(item)); part != "" {
				parts = append(parts, part)
			}
		}
		return strings.Join(parts, multiValueSeparator)
	default:
		return ""
	}
}

// parseFormFields keeps every pair url.ParseQuery managed to decode, even when a later
// pair carries an invalid escape.
func (n *SubmissionNormalizer) parseFormFields(body []byte) map[string]string {
	form, err := url.ParseQuery(string(body))
	if err != nil {
		n.logger.Warn().Err(err).Msg("form body partially decoded, keeping readable fields")
	}

	values := make(map[string]string, len(submissionFields))
	for _, field := range submissionFields {
		parts := make([]string, 0, len(form[field.name]))
		for _, part := range form[field.name] {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		values[field.name] = strings.Join(parts, multiValueSeparator)
	}
	return values
}

func cleanField(name, value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.TrimSpace(value)
	if name == "email" {
		return strings.ToLower(value)
	}
	return value
}
