package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"horse.fit/topicsearch/internal/topic"
)

const (
	proposalSchemaName = "topic_proposal.schema.json"
	questionSchemaName = "question.schema.json"
)

//go:embed topic_proposal.schema.json
var proposalSchemaJSON string

//go:embed question.schema.json
var questionSchemaJSON string

type proposalPayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type questionPayload struct {
	Question string `json:"question"`
}

type compiledSchema struct {
	once   sync.Once
	name   string
	source string
	schema *jsonschema.Schema
	err    error
}

var (
	proposalSchema = &compiledSchema{name: proposalSchemaName, source: proposalSchemaJSON}
	questionSchema = &compiledSchema{name: questionSchemaName, source: questionSchemaJSON}
)

// DecodeProposal validates a duplicate-check request body. Whether the
// proposal carries any text at all is left to topic.BuildQuery.
func DecodeProposal(raw []byte) (topic.Proposal, error) {
	var payload proposalPayload
	if err := validateInto(proposalSchema, raw, &payload); err != nil {
		return topic.Proposal{}, err
	}

	var proposal topic.Proposal
	if payload.Title != nil {
		proposal.Title = *payload.Title
	}
	if payload.Description != nil {
		proposal.Description = *payload.Description
	}
	return proposal, nil
}

// DecodeQuestion validates an answer request body and returns the question.
func DecodeQuestion(raw []byte) (string, error) {
	var payload questionPayload
	if err := validateInto(questionSchema, raw, &payload); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.Question) == "" {
		return "", topic.NewValidationError("question", "must not be blank")
	}
	return payload.Question, nil
}

func validateInto(compiled *compiledSchema, raw []byte, out any) error {
	value, err := decodeStrictJSON(raw)
	if err != nil {
		return topic.NewValidationError("body", err.Error())
	}

	schema, err := compiled.load()
	if err != nil {
		return fmt.Errorf("load schema %s: %w", compiled.name, err)
	}

	if err := schema.Validate(value); err != nil {
		return toValidationError(err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("normalize payload JSON: %w", err)
	}
	if err := json.Unmarshal(normalized, out); err != nil {
		return topic.NewValidationError("body", err.Error())
	}
	return nil
}

func (c *compiledSchema) load() (*jsonschema.Schema, error) {
	c.once.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource(c.name, strings.NewReader(c.source)); err != nil {
			c.err = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile(c.name)
		if err != nil {
			c.err = fmt.Errorf("compile schema: %w", err)
			return
		}
		c.schema = schema
	})

	if c.err != nil {
		return nil, c.err
	}
	if c.schema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return c.schema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("payload is not valid JSON")
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}
	return value, nil
}

// toValidationError flattens the schema error tree into one message per field.
func toValidationError(err error) error {
	var schemaErr *jsonschema.ValidationError
	if !errors.As(err, &schemaErr) {
		return topic.NewValidationError("body", err.Error())
	}

	fields := map[string]string{}
	collectLeafErrors(schemaErr, fields)
	if len(fields) == 0 {
		fields["body"] = schemaErr.Message
	}
	return &topic.ValidationError{Fields: fields}
}

func collectLeafErrors(err *jsonschema.ValidationError, fields map[string]string) {
	if len(err.Causes) == 0 {
		field := strings.TrimPrefix(err.InstanceLocation, "/")
		if field == "" {
			field = "body"
		}
		if _, exists := fields[field]; !exists {
			fields[field] = err.Message
		}
		return
	}
	for _, cause := range err.Causes {
		collectLeafErrors(cause, fields)
	}
}
