package sync

import (
	"strings"

	"vehicle-sync/core/syscara"
	"vehicle-sync/core/utils"
)

// Exclusion reasons reported by Filter.Match. ReasonDecodeError marks a listing
// whose payload did not decode.
const (
	ReasonZipCode     = "zip_code"
	ReasonType        = "wrong_type"
	ReasonStatus      = "status"
	ReasonNotVisible  = "not_visible"
	ReasonNoPrice     = "no_price"
	ReasonDecodeError = "decode_error"
)

// Filter decides which source listings belong to a sync run.
type Filter struct {
	ZipCodes       []string
	Types          []string
	Statuses       []string
	RequireVisible bool
	RequirePrice   bool
}

// FilterFromConfig builds the filter of a run configuration.
func FilterFromConfig(cfg Config) Filter {
	return Filter{
		ZipCodes:       cleanList(cfg.ZipCodes),
		Types:          cleanList(cfg.Types),
		Statuses:       cleanList(cfg.Statuses),
		RequireVisible: cfg.RequireVisible,
		RequirePrice:   cfg.RequirePrice,
	}
}

// Match reports whether the listing passes, and the first failing reason if not.
func (f Filter) Match(ad syscara.Ad) (bool, string) {
	if len(f.ZipCodes) > 0 && !contains(f.ZipCodes, ad.Store.ZipCode.String(), false) {
		return false, ReasonZipCode
	}
	if len(f.Types) > 0 && !contains(f.Types, ad.Type, true) {
		return false, ReasonType
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, ad.Status, true) {
		return false, ReasonStatus
	}
	if f.RequireVisible && (!flagSet(ad.Visible) || !flagSet(ad.Active)) {
		return false, ReasonNotVisible
	}
	if f.RequirePrice {
		offer, okOffer := ad.Prices.Offer.Float()
		rent, okRent := ad.Prices.Rent.Float()
		if !(okOffer && offer > 0) && !(okRent && rent > 0) {
			return false, ReasonNoPrice
		}
	}
	return true, ""
}

// Apply returns the entries passing the filter, keeping their order. Entries that
// did not decode are kept: their scope is unknown, so they surface as item errors
// and their target records are never deleted.
func (f Filter) Apply(entries []syscara.Entry) []syscara.Entry {
	out := make([]syscara.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Err != nil {
			out = append(out, e)
			continue
		}
		if ok, _ := f.Match(e.Ad); ok {
			out = append(out, e)
		}
	}
	return out
}

// flagSet treats an absent flag as set.
func flagSet(v any) bool {
	if v == nil {
		return true
	}
	return utils.ToBool(v)
}

func contains(list []string, v string, fold bool) bool {
	v = strings.TrimSpace(v)
	for _, item := range list {
		if item == v || (fold && strings.EqualFold(item, v)) {
			return true
		}
	}
	return false
}

func cleanList(in []string) []string {
	var out []string
	for _, item := range in {
		// Values may arrive as one comma separated string from the environment.
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
