package syscara

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"vehicle-sync/core/utils"
)

// ID is an identifier the API sends either as a JSON number or as a string.
// It keeps the textual form and marshals back to a number when it is numeric.
type ID string

// UnmarshalJSON accepts numbers, strings and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("syscara: invalid id %s", data)
	}
	*id = ID(data)
	return nil
}

// MarshalJSON writes numeric ids as numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsNumeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// IsNumeric reports whether the id consists of decimal digits only.
func (id ID) IsNumeric() bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String returns the textual id.
func (id ID) String() string { return string(id) }

// Number is a numeric attribute the API sends as number, numeric string or null.
type Number string

// UnmarshalJSON accepts numbers, strings and null.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number(strings.TrimSpace(s))
		return nil
	}
	if data[0] == 't' || data[0] == 'f' {
		// Booleans are not numbers; treat as absent.
		*n = ""
		return nil
	}
	*n = Number(data)
	return nil
}

// Float parses the number. ok is false when absent or not numeric.
func (n Number) Float() (float64, bool) {
	return utils.ParseDecimal(string(n))
}

// Decimal returns the shortest decimal string, or "" when absent or not numeric.
func (n Number) Decimal() string {
	f, ok := n.Float()
	if !ok {
		return ""
	}
	return utils.FormatDecimal(f)
}

// IsZero reports whether the number is present and equal to zero.
func (n Number) IsZero() bool {
	f, ok := n.Float()
	return ok && f == 0
}

// Tokens is a vocabulary list the API sends in several shapes: an array of strings,
// an array of objects carrying a "type", "name" or "id", or a comma separated string.
type Tokens []string

// UnmarshalJSON normalizes every known shape into a list of non-empty tokens.
func (t *Tokens) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*t = nil
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				*t = append(*t, part)
			}
		}
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		for _, item := range raw {
			if tok := tokenOf(item); tok != "" {
				*t = append(*t, tok)
			}
		}
		return nil
	case '{':
		// Object keyed by token, e.g. {"AWNING": true}.
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		for k := range obj {
			if k = strings.TrimSpace(k); k != "" {
				*t = append(*t, k)
			}
		}
		sort.Strings(*t)
		return nil
	}
	return nil
}

func tokenOf(item json.RawMessage) string {
	item = bytes.TrimSpace(item)
	if len(item) == 0 {
		return ""
	}
	switch item[0] {
	case '"':
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case '{':
		var obj struct {
			Type ID `json:"type"`
			Name ID `json:"name"`
			ID   ID `json:"id"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return ""
		}
		for _, v := range []ID{obj.Type, obj.Name, obj.ID} {
			if v != "" {
				return v.String()
			}
		}
		return ""
	default:
		var id ID
		if err := json.Unmarshal(item, &id); err != nil {
			return ""
		}
		return id.String()
	}
}

// Ad is a single vehicle listing as returned by /sale/ads.
type Ad struct {
	ID         ID         `json:"id"`
	Type       string     `json:"type"`
	Category   string     `json:"category"`
	Condition  string     `json:"condition"`
	Status     string     `json:"status"`
	Visible    any        `json:"visible"`
	Active     any        `json:"active"`
	Mileage    Number     `json:"mileage"`
	Flags      Tokens     `json:"flags"`
	Model      Model      `json:"model"`
	Engine     Engine     `json:"engine"`
	Dimensions Dimensions `json:"dimensions"`
	Weights    Weights    `json:"weights"`
	Prices     Prices     `json:"prices"`
	Media      []Media    `json:"media"`
	Features   Tokens     `json:"features"`
	Beds       Beds       `json:"beds"`
	Store      Store      `json:"store"`
	Location   Location   `json:"location"`
	Texts      Texts      `json:"texts"`
}

// Model describes producer, series and model of a vehicle.
type Model struct {
	Producer  string `json:"producer"`
	Series    string `json:"series"`
	Model     string `json:"model"`
	ModelAdd  string `json:"model_add"`
	ModelYear Number `json:"modelyear"`
}

// Engine holds drive train attributes.
type Engine struct {
	PS   Number `json:"ps"`
	KW   Number `json:"kw"`
	Fuel string `json:"fuel"`
	Gear string `json:"gear"`
}

// Dimensions are given in centimetres.
type Dimensions struct {
	Width  Number `json:"width"`
	Height Number `json:"height"`
	Length Number `json:"length"`
}

// Weights are given in kilograms.
type Weights struct {
	Total   Number `json:"total"`
	Empty   Number `json:"empty"`
	Payload Number `json:"payload"`
}

// Prices holds the sale offer and the rental price.
type Prices struct {
	Offer Number `json:"offer"`
	Rent  Number `json:"rent"`
}

// Media group tags.
const (
	MediaGroupImage  = "image"
	MediaGroupLayout = "layout"
)

// Media is a reference into the media service.
type Media struct {
	ID    ID     `json:"id"`
	Group string `json:"group"`
}

// Beds wraps the bed list; the API nests it as beds.beds.
type Beds struct {
	Beds Tokens `json:"beds"`
}

// Store is the dealer location owning the vehicle.
type Store struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	ZipCode ID     `json:"zipcode"`
}

// Location is the physical parking location.
type Location struct {
	Name string `json:"name"`
}

// Texts holds free-text descriptions.
type Texts struct {
	DescriptionPlain string `json:"description_plain"`
}

// Entry is a listing together with the key it was published under.
type Entry struct {
	// Key is the collection key; it equals Ad.ID after normalization.
	Key string
	// Ad is the decoded listing.
	Ad Ad
	// Raw is the undecoded payload, kept for diagnostics.
	Raw json.RawMessage
	// Err is set when the listing did not decode. Ad then only carries the id.
	Err error
}

// lessKey orders keys the way a JavaScript object enumerates them:
// integer-like keys ascending by value, then other keys lexically.
func lessKey(a, b string) bool {
	ai, aErr := strconv.ParseUint(a, 10, 64)
	bi, bErr := strconv.ParseUint(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		return ai < bi
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return a < b
	}
}
