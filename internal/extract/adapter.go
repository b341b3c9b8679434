package extract

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DocumentClass tells the adapter which fixed field set to normalize into.
type DocumentClass string

const (
	ClassIdentity DocumentClass = "identity"
	ClassVehicle  DocumentClass = "vehicle"
)

// NotDetected is the rendered value for any field the service did not return.
const NotDetected = "Not detected"

// ErrExtraction marks a failed extraction service call. The adapter never
// fabricates field values: a failed call yields no summary at all.
var ErrExtraction = errors.New("document extraction failed")

var (
	datePattern  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	platePattern = regexp.MustCompile(`\b[A-Z0-9-]{4,10}\b`)
)

// Adapter normalizes raw extraction responses into rendered document
// summaries with a fixed field set per document class.
type Adapter struct {
	client Client
}

// NewAdapter wraps an extraction service client.
func NewAdapter(client Client) *Adapter {
	return &Adapter{client: client}
}

// Extract runs the service once and renders the summary for class.
func (a *Adapter) Extract(ctx context.Context, image []byte, class DocumentClass) (string, error) {
	inf, err := a.client.Extract(ctx, image)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	switch class {
	case ClassVehicle:
		return renderVehicle(inf), nil
	default:
		return renderIdentity(inf), nil
	}
}

func renderIdentity(inf *Inference) string {
	get := fieldGetter(inf.Fields)

	var b strings.Builder
	b.WriteString("📘 *Passport Data:*\n")
	fmt.Fprintf(&b, "• Full Name: %s\n", get("full_name"))
	fmt.Fprintf(&b, "• Given Names: %s\n", get("given_names"))
	fmt.Fprintf(&b, "• Surname: %s\n", get("surname"))
	fmt.Fprintf(&b, "• Birth Date: %s\n", FormatDate(get("birth_date")))
	fmt.Fprintf(&b, "• Passport Number: %s\n", get("passport_number"))
	fmt.Fprintf(&b, "• Issuing Country: %s\n", get("issuing_country"))
	fmt.Fprintf(&b, "• Expiration Date: %s", FormatDate(get("expiration_date")))
	return b.String()
}

func renderVehicle(inf *Inference) string {
	get := fieldGetter(inf.Fields)

	var b strings.Builder
	b.WriteString("🚗 *Vehicle Data:*\n")
	fmt.Fprintf(&b, "• Make: %s\n", get("vehicle_make"))
	fmt.Fprintf(&b, "• Model: %s\n", get("vehicle_model"))
	fmt.Fprintf(&b, "• Year: %s\n", get("manufacturing_year"))
	fmt.Fprintf(&b, "• VIN: %s\n", get("vin"))
	fmt.Fprintf(&b, "• Registration Number: %s\n", resolveRegistration(inf.Fields, inf.PageText))
	fmt.Fprintf(&b, "• Owner Name: %s", get("owner_name"))
	return b.String()
}

func fieldGetter(fields map[string]string) func(string) string {
	return func(key string) string {
		if v := fields[key]; v != "" {
			return v
		}
		return NotDetected
	}
}

// resolveRegistration applies the registration-number policy: prefer the
// structured registration_number field, fall back to document_number, and
// when the resolved value is missing or looks like a date (the extraction
// model is known to mis-map dates into this field) scan the page text for
// the first plate-shaped token.
func resolveRegistration(fields map[string]string, pageText string) string {
	reg := fields["registration_number"]
	if reg == "" {
		reg = fields["document_number"]
	}

	if reg == "" || datePattern.MatchString(reg) {
		if m := platePattern.FindString(pageText); m != "" {
			return m
		}
		return NotDetected
	}
	return reg
}
