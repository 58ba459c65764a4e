// Package validation parses untrusted request input into validated domain parameters.
//
// Parsing is fail-fast but exhaustive: every violated constraint is reported in a single [Error].
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/myrjola/huntdesk/internal/models"
)

const (
	maxSubChannelLength = 100
	maxMarkets          = 10
	maxFocusBrands      = 10
	minMaxAccounts      = 1
	maxMaxAccounts      = 50
)

// FieldError describes one violated constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error lists every field that failed validation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Error) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *Error) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// HuntInput is the hunt-creation request as decoded from JSON. Every field keeps its raw JSON value so that a value
// of the wrong type is reported like any other violated constraint. Absent fields stay nil.
type HuntInput struct {
	SubChannel  json.RawMessage `json:"subChannel"`
	Markets     json.RawMessage `json:"markets"`
	FocusBrands json.RawMessage `json:"focusBrands"`
	MaxAccounts json.RawMessage `json:"maxAccounts"`
}

// NewHuntInput builds a HuntInput from typed values. Nil arguments leave the field absent.
func NewHuntInput(subChannel *string, markets, focusBrands []string, maxAccounts *int) HuntInput {
	in := HuntInput{SubChannel: nil, Markets: nil, FocusBrands: nil, MaxAccounts: nil}
	if subChannel != nil {
		in.SubChannel = mustMarshal(*subChannel)
	}
	if markets != nil {
		in.Markets = mustMarshal(markets)
	}
	if focusBrands != nil {
		in.FocusBrands = mustMarshal(focusBrands)
	}
	if maxAccounts != nil {
		in.MaxAccounts = mustMarshal(*maxAccounts)
	}
	return in
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err) // Strings, string slices and ints always marshal.
	}
	return b
}

// ParseHuntParams validates in and applies defaults.
func ParseHuntParams(in HuntInput) (models.HuntParams, error) {
	verr := &Error{Fields: nil}

	subChannel, ok := stringField(verr, "subChannel", in.SubChannel)
	if ok {
		checkSubChannel(verr, subChannel)
	}
	markets := checkList(verr, "markets", in.Markets, maxMarkets,
		"At least one market is required", "Maximum 10 markets allowed")
	focusBrands := checkList(verr, "focusBrands", in.FocusBrands, maxFocusBrands,
		"At least one focus brand is required", "Maximum 10 focus brands allowed")

	maxAccounts := models.DefaultMaxAccounts
	if in.MaxAccounts != nil {
		maxAccounts = checkMaxAccounts(verr, in.MaxAccounts)
	}

	if err := verr.orNil(); err != nil {
		return models.HuntParams{}, err
	}
	return models.HuntParams{
		SubChannel:  subChannel,
		Markets:     markets,
		FocusBrands: focusBrands,
		MaxAccounts: maxAccounts,
	}, nil
}

// decodeRaw decodes one JSON value keeping numbers as [json.Number].
func decodeRaw(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err //nolint:wrapcheck // reported as a field error
	}
	return v, nil
}

// jsonType names the JSON type of a decoded value.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	default:
		return "object"
	}
}

func typeMismatch(verr *Error, field, want string, v any) {
	verr.add(field, fmt.Sprintf("Expected %s, received %s", want, jsonType(v)))
}

// stringField reports a missing or non-string value of a required field.
func stringField(verr *Error, field string, raw json.RawMessage) (string, bool) {
	if raw == nil {
		verr.add(field, "Required")
		return "", false
	}
	v, err := decodeRaw(raw)
	if err != nil {
		verr.add(field, "Invalid JSON")
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		typeMismatch(verr, field, "string", v)
		return "", false
	}
	return s, true
}

// ParsePlaybookParams validates the sub-channel of a playbook request.
func ParsePlaybookParams(subChannel string) (string, error) {
	verr := &Error{Fields: nil}
	checkSubChannel(verr, subChannel)
	if err := verr.orNil(); err != nil {
		return "", err
	}
	return subChannel, nil
}

func checkSubChannel(verr *Error, subChannel string) {
	switch n := utf8.RuneCountInString(subChannel); {
	case n == 0:
		verr.add("subChannel", "Sub-channel is required")
	case n > maxSubChannelLength:
		verr.add("subChannel", "Sub-channel too long")
	}
}

func checkList(verr *Error, field string, raw json.RawMessage, maxLen int, tooFew, tooMany string) []string {
	if raw == nil {
		verr.add(field, "Required")
		return nil
	}
	v, err := decodeRaw(raw)
	if err != nil {
		verr.add(field, "Invalid JSON")
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		typeMismatch(verr, field, "array", v)
		return nil
	}

	switch {
	case len(items) == 0:
		verr.add(field, tooFew)
	case len(items) > maxLen:
		verr.add(field, tooMany)
	}
	values := make([]string, len(items))
	for i, item := range items {
		elementField := fmt.Sprintf("%s.%d", field, i)
		s, isString := item.(string)
		switch {
		case !isString:
			typeMismatch(verr, elementField, "string", item)
		case s == "":
			verr.add(elementField, "String must contain at least 1 character(s)")
		}
		values[i] = s
	}
	return values
}

// checkMaxAccounts accepts only a JSON number without fractional part. Quoted numbers and null are rejected.
func checkMaxAccounts(verr *Error, raw json.RawMessage) int {
	v, err := decodeRaw(raw)
	if err != nil {
		verr.add("maxAccounts", "Invalid JSON")
		return 0
	}
	n, ok := v.(json.Number)
	if !ok {
		typeMismatch(verr, "maxAccounts", "number", v)
		return 0
	}
	f, err := n.Float64()
	if err != nil {
		verr.add("maxAccounts", "Expected number")
		return 0
	}
	if f != math.Trunc(f) {
		verr.add("maxAccounts", "Expected integer, received float")
		return 0
	}
	switch {
	case f < minMaxAccounts:
		verr.add("maxAccounts", "Number must be greater than or equal to 1")
	case f > maxMaxAccounts:
		verr.add("maxAccounts", "Number must be less than or equal to 50")
	}
	return int(f)
}

const (
	// DefaultLimit is the page size of list requests without a limit.
	DefaultLimit = 20
	maxLimit     = 100
)

// ParsePagination validates the raw limit and offset query parameters. Empty values select the defaults.
func ParsePagination(rawLimit, rawOffset string) (limit, offset int, err error) {
	verr := &Error{Fields: nil}
	limit = parseNonNegative(verr, "limit", rawLimit, DefaultLimit)
	switch {
	case verr.has("limit"):
	case limit < 1:
		verr.add("limit", "Number must be greater than or equal to 1")
	case limit > maxLimit:
		verr.add("limit", fmt.Sprintf("Number must be less than or equal to %d", maxLimit))
	}
	offset = parseNonNegative(verr, "offset", rawOffset, 0)
	if err = verr.orNil(); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func parseNonNegative(verr *Error, field, raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		verr.add(field, "Expected integer")
		return 0
	}
	if n < 0 {
		verr.add(field, "Number must be greater than or equal to 0")
	}
	return n
}

func (e *Error) has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
