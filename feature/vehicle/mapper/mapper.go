package mapper

import (
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"vehicle-sync/core/syscara"
)

// Options tunes the mapping.
type Options struct {
	// GalleryMax caps the number of gallery images.
	GalleryMax int
	// ZeroValid lists numeric fields for which zero is a real value (e.g. kilometer
	// for a new vehicle). Zero in any other numeric field maps to "".
	ZeroValid []string
	// RentalKeyword classifies a listing without category as rental when the
	// location name contains it.
	RentalKeyword string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		GalleryMax:    25,
		ZeroValid:     []string{FieldMileage},
		RentalKeyword: "vermiet",
	}
}

// Record is a mapped listing.
type Record struct {
	// Key is the external key, the listing id.
	Key string `json:"key"`
	// Fields is the flat field record; every value is a string or []string.
	Fields map[string]any `json:"fields"`
	// FeatureSlugs are unresolved feature references.
	FeatureSlugs []string `json:"featureSlugs"`
	// BedSlugs are unresolved bed type references.
	BedSlugs []string `json:"bettartenSlugs"`
	// Media holds the bucketed media ids also serialized into media-cache.
	Media MediaCache `json:"media"`
}

// Mapper maps listings with fixed options.
type Mapper struct {
	opts      Options
	zeroValid map[string]struct{}
}

// New creates a mapper. Zero values in opts fall back to DefaultOptions.
func New(opts Options) *Mapper {
	def := DefaultOptions()
	if opts.GalleryMax <= 0 {
		opts.GalleryMax = def.GalleryMax
	}
	if opts.ZeroValid == nil {
		opts.ZeroValid = def.ZeroValid
	}
	if opts.RentalKeyword == "" {
		opts.RentalKeyword = def.RentalKeyword
	}
	zv := make(map[string]struct{}, len(opts.ZeroValid))
	for _, f := range opts.ZeroValid {
		zv[strings.TrimSpace(f)] = struct{}{}
	}
	return &Mapper{opts: opts, zeroValid: zv}
}

// DisplayName joins producer, series and model. It is "" when all are empty.
func DisplayName(ad syscara.Ad) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{ad.Model.Producer, ad.Model.Series, ad.Model.Model} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Map converts a listing. The key is taken from the listing id only.
func (m *Mapper) Map(ad syscara.Ad) Record {
	key := ad.ID.String()

	name := DisplayName(ad)
	if name == "" {
		fallback := key
		if fallback == "" {
			fallback = "unknown"
		}
		name = "Vehicle " + fallback
	}

	slug := Slugify(stripKeySuffix(name, key))
	if key != "" {
		slug = strings.Trim(KeySlug(key)+"-"+slug, "-")
	}

	media := BucketMedia(ad.Media, m.opts.GalleryMax)
	mediaJSON, err := json.Marshal(media)
	if err != nil {
		// MediaCache holds only strings and cannot fail to encode.
		mediaJSON = []byte(`{"hauptbild":null,"galerie":[],"grundriss":null}`)
	}

	description := strings.TrimSpace(ad.Texts.DescriptionPlain)

	fields := map[string]any{
		FieldName:        name,
		FieldSlug:        slug,
		FieldKey:         key,
		FieldProducer:    strings.TrimSpace(ad.Model.Producer),
		FieldSeries:      strings.TrimSpace(ad.Model.Series),
		FieldModel:       strings.TrimSpace(ad.Model.Model),
		FieldModelAdd:    strings.TrimSpace(ad.Model.ModelAdd),
		FieldCondition:   strings.TrimSpace(ad.Condition),
		FieldType:        strings.TrimSpace(ad.Type),
		FieldFuel:        strings.TrimSpace(ad.Engine.Fuel),
		FieldGear:        strings.TrimSpace(ad.Engine.Gear),
		FieldDescription: description,
		FieldShortDesc:   truncateRunes(description, shortDescriptionRunes),
		FieldSaleOrRent:  m.saleOrRent(ad),
		FieldLocation:    strings.TrimSpace(ad.Store.City),
		FieldZipCode:     ad.Store.ZipCode.String(),
		FieldMediaCache:  string(mediaJSON),
	}

	for field, n := range map[string]syscara.Number{
		FieldPS:          ad.Engine.PS,
		FieldKW:          ad.Engine.KW,
		FieldMileage:     ad.Mileage,
		FieldModelYear:   ad.Model.ModelYear,
		FieldPrice:       ad.Prices.Offer,
		FieldRentPrice:   ad.Prices.Rent,
		FieldWidth:       ad.Dimensions.Width,
		FieldHeight:      ad.Dimensions.Height,
		FieldLength:      ad.Dimensions.Length,
		FieldTotalWeight: ad.Weights.Total,
		FieldEmptyWeight: ad.Weights.Empty,
		FieldPayload:     ad.Weights.Payload,
	} {
		fields[field] = m.number(field, n)
	}

	return Record{
		Key:          key,
		Fields:       fields,
		FeatureSlugs: TokenSlugs(ad.Features),
		BedSlugs:     TokenSlugs(ad.Beds.Beds),
		Media:        media,
	}
}

// number renders a numeric attribute. Zero maps to "" unless the field is listed
// as zero-valid; absent or non-numeric values always map to "".
func (m *Mapper) number(field string, n syscara.Number) string {
	if n.IsZero() {
		if _, ok := m.zeroValid[field]; ok {
			return "0"
		}
		return ""
	}
	return n.Decimal()
}

// saleOrRent prefers the explicit category and falls back to the rental flag or a
// keyword in the location name only when the category is missing.
func (m *Mapper) saleOrRent(ad syscara.Ad) string {
	switch strings.ToLower(strings.TrimSpace(ad.Category)) {
	case "rent", "rental", "miete":
		return Rental
	case "sale", "kauf":
		return Sale
	case "":
		for _, f := range ad.Flags {
			if strings.EqualFold(f, "RENTAL_CAR") {
				return Rental
			}
		}
		if m.opts.RentalKeyword != "" &&
			strings.Contains(strings.ToLower(ad.Location.Name), strings.ToLower(m.opts.RentalKeyword)) {
			return Rental
		}
		return Sale
	default:
		return Sale
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n]))
}
