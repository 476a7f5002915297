package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductDetails holds the structured media and merchandising data of a
// product. It is stored as a single jsonb column and every read of it, from
// the database or from a request body, goes through DecodeProductDetails.
type ProductDetails struct {
	Images     []ProductImage    `json:"images"`
	Variants   []ProductVariant  `json:"variants"`
	Tags       []string          `json:"tags"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type ProductImage struct {
	URL       string `json:"url"`
	Alt       string `json:"alt,omitempty"`
	IsPrimary bool   `json:"is_primary,omitempty"`
}

// ProductVariant is a selectable dimension such as size or colour.
type ProductVariant struct {
	Name    string          `json:"name"`
	Options []VariantOption `json:"options"`
}

type VariantOption struct {
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price,omitempty"`
	Stock int              `json:"stock"`
}

// DetailsError reports a product details payload that could not be decoded
// or failed validation.
type DetailsError struct {
	Field  string
	Reason string
	Err    error
}

func (e *DetailsError) Error() string {
	if e.Field == "" {
		return "invalid product details: " + e.Reason
	}
	return fmt.Sprintf("invalid product details: %s: %s", e.Field, e.Reason)
}

func (e *DetailsError) Unwrap() error {
	return e.Err
}

// detailsPayload has the same shape as ProductDetails without its
// UnmarshalJSON method.
type detailsPayload ProductDetails

// DecodeProductDetails strictly decodes a details payload. Empty input and
// JSON null decode to the zero value. Unknown fields, wrong types, trailing
// data and semantically invalid entries yield a *DetailsError.
func DecodeProductDetails(data []byte) (ProductDetails, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ProductDetails{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var payload detailsPayload
	if err := dec.Decode(&payload); err != nil {
		return ProductDetails{}, detailsDecodeError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return ProductDetails{}, &DetailsError{Reason: "unexpected data after payload"}
	}

	details := ProductDetails(payload)
	if err := details.Validate(); err != nil {
		return ProductDetails{}, err
	}
	return details, nil
}

func detailsDecodeError(err error) *DetailsError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &DetailsError{
			Field:  typeErr.Field,
			Reason: "expected " + typeErr.Type.String() + ", got " + typeErr.Value,
			Err:    err,
		}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &DetailsError{Reason: "malformed JSON", Err: err}
	}
	if msg := err.Error(); strings.HasPrefix(msg, "json: unknown field ") {
		return &DetailsError{
			Field:  strings.Trim(strings.TrimPrefix(msg, "json: unknown field "), `"`),
			Reason: "unknown field",
			Err:    err,
		}
	}
	return &DetailsError{Reason: err.Error(), Err: err}
}

// Validate checks the invariants the storefront relies on.
func (d ProductDetails) Validate() error {
	primaries := 0
	for i, img := range d.Images {
		if strings.TrimSpace(img.URL) == "" {
			return &DetailsError{Field: fmt.Sprintf("images[%d].url", i), Reason: "is required"}
		}
		if img.IsPrimary {
			primaries++
		}
	}
	if primaries > 1 {
		return &DetailsError{Field: "images", Reason: "at most one image can be primary"}
	}

	for i, v := range d.Variants {
		if strings.TrimSpace(v.Name) == "" {
			return &DetailsError{Field: fmt.Sprintf("variants[%d].name", i), Reason: "is required"}
		}
		if len(v.Options) == 0 {
			return &DetailsError{Field: fmt.Sprintf("variants[%d].options", i), Reason: "must not be empty"}
		}
		for j, opt := range v.Options {
			field := fmt.Sprintf("variants[%d].options[%d]", i, j)
			if strings.TrimSpace(opt.Name) == "" {
				return &DetailsError{Field: field + ".name", Reason: "is required"}
			}
			if opt.Stock < 0 {
				return &DetailsError{Field: field + ".stock", Reason: "must not be negative"}
			}
			if opt.Price != nil && opt.Price.IsNegative() {
				return &DetailsError{Field: field + ".price", Reason: "must not be negative"}
			}
		}
	}

	for i, tag := range d.Tags {
		if strings.TrimSpace(tag) == "" {
			return &DetailsError{Field: fmt.Sprintf("tags[%d]", i), Reason: "must not be blank"}
		}
	}
	return nil
}

// PrimaryImage returns the image flagged primary, else the first one.
func (d ProductDetails) PrimaryImage() (ProductImage, bool) {
	for _, img := range d.Images {
		if img.IsPrimary {
			return img, true
		}
	}
	if len(d.Images) > 0 {
		return d.Images[0], true
	}
	return ProductImage{}, false
}

func (d *ProductDetails) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeProductDetails(data)
	if err != nil {
		return err
	}
	*d = decoded
	return nil
}

func (d ProductDetails) MarshalJSON() ([]byte, error) {
	out := detailsPayload(d)
	if out.Images == nil {
		out.Images = []ProductImage{}
	}
	if out.Variants == nil {
		out.Variants = []ProductVariant{}
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return json.Marshal(out)
}

func (d ProductDetails) Value() (driver.Value, error) {
	data, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (d *ProductDetails) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*d = ProductDetails{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ProductDetails", value)
	}
	return d.UnmarshalJSON(data)
}
