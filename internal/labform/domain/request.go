package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CreateRequest is a candidate record as submitted by a client. Every field
// is optional; unknown fields, including id and timestamps, are dropped.
type CreateRequest struct {
	CarNo         Text   `json:"carNo"`
	SiNo          Number `json:"siNo"`
	PaddyName     Text   `json:"paddyName"`
	PaddyMoisture Number `json:"paddyMoisture"`
	RiceMoisture  Number `json:"riceMoisture"`
	PaddyWeight   Number `json:"paddyWeight"`
	Husk          Number `json:"husk"`
	Bran          Number `json:"bran"`
	Dust          Number `json:"dust"`
	DDC           Number `json:"ddc"`
	PaddyPercent  Number `json:"paddyPercent"`
	TotalRice     Number `json:"totalRice"`
	HuskToRice    Number `json:"huskToRice"`
	TotalHandRice Number `json:"totalHandRice"`
	CreatedBy     Text   `json:"createdBy"`
}

// DecodeCreateRequest parses a create body. An empty body is an empty
// record. ErrMalformedBody means the body is not a JSON object; ErrCast
// means a field could not be coerced to its type.
func DecodeCreateRequest(body []byte) (CreateRequest, error) {
	var req CreateRequest

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return req, nil
	}
	if trimmed[0] != '{' || !json.Valid(trimmed) {
		return req, ErrMalformedBody
	}
	if err := json.Unmarshal(trimmed, &req); err != nil {
		if errors.Is(err, ErrCast) {
			return CreateRequest{}, err
		}
		return CreateRequest{}, fmt.Errorf("%w: %v", ErrCast, err)
	}
	return req, nil
}

// LabForm copies the coerced values into a record without id or timestamps.
func (r CreateRequest) LabForm() LabForm {
	return LabForm{
		CarNo:         string(r.CarNo),
		SiNo:          float64(r.SiNo),
		PaddyName:     string(r.PaddyName),
		PaddyMoisture: float64(r.PaddyMoisture),
		RiceMoisture:  float64(r.RiceMoisture),
		PaddyWeight:   float64(r.PaddyWeight),
		Husk:          float64(r.Husk),
		Bran:          float64(r.Bran),
		Dust:          float64(r.Dust),
		DDC:           float64(r.DDC),
		PaddyPercent:  float64(r.PaddyPercent),
		TotalRice:     float64(r.TotalRice),
		HuskToRice:    float64(r.HuskToRice),
		TotalHandRice: float64(r.TotalHandRice),
		CreatedBy:     string(r.CreatedBy),
	}
}

// Number accepts JSON numbers, numeric strings and booleans. null and ""
// decode to zero.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	switch {
	case len(raw) == 0, string(raw) == "null":
		*n = 0
		return nil
	case string(raw) == "true":
		*n = 1
		return nil
	case string(raw) == "false":
		*n = 0
		return nil
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrCast, err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		return n.parse(s)
	case raw[0] == '{', raw[0] == '[':
		return fmt.Errorf("%w: cannot cast %s to number", ErrCast, jsonKind(raw))
	default:
		return n.parse(string(raw))
	}
}

func (n *Number) parse(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: cannot cast %q to number", ErrCast, s)
	}
	*n = Number(f)
	return nil
}

// Text accepts JSON strings, numbers and booleans. null decodes to "".
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	switch {
	case len(raw) == 0, string(raw) == "null":
		*t = ""
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrCast, err)
		}
		*t = Text(s)
	case raw[0] == '{', raw[0] == '[':
		return fmt.Errorf("%w: cannot cast %s to string", ErrCast, jsonKind(raw))
	case string(raw) == "true", string(raw) == "false":
		*t = Text(raw)
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return fmt.Errorf("%w: cannot cast %s to string", ErrCast, raw)
		}
		*t = Text(formatNumber(f))
	}
	return nil
}

// formatNumber renders f the way a browser stringifies a number: the
// shortest round-tripping digits, plain notation from 1e-6 up to 1e21.
func formatNumber(f float64) string {
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		s = strings.Replace(s, "e-0", "e-", 1)
		return strings.Replace(s, "e+0", "e+", 1)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func jsonKind(raw []byte) string {
	if raw[0] == '{' {
		return "object"
	}
	return "array"
}
