package mapper

// Field names of the vehicle collection.
const (
	FieldName          = "name"
	FieldSlug          = "slug"
	FieldKey           = "fahrzeug-id"
	FieldProducer      = "hersteller"
	FieldSeries        = "serie"
	FieldModel         = "modell"
	FieldModelAdd      = "modell-zusatz"
	FieldCondition     = "zustand"
	FieldType          = "fahrzeugtyp"
	FieldPS            = "ps"
	FieldKW            = "kw"
	FieldFuel          = "kraftstoff"
	FieldGear          = "getriebe"
	FieldDescription   = "beschreibung"
	FieldShortDesc     = "beschreibung-kurz"
	FieldMileage       = "kilometer"
	FieldModelYear     = "baujahr"
	FieldPrice         = "preis"
	FieldRentPrice     = "mietpreis"
	FieldWidth         = "breite"
	FieldHeight        = "hoehe"
	FieldLength        = "laenge"
	FieldTotalWeight   = "gesamtgewicht"
	FieldEmptyWeight   = "leergewicht"
	FieldPayload       = "zuladung"
	FieldSaleOrRent    = "verkauf-miete"
	FieldLocation      = "standort"
	FieldZipCode       = "plz"
	FieldMediaCache    = "media-cache"
	FieldMainImage     = "hauptbild"
	FieldGallery       = "galerie"
	FieldFloorPlan     = "grundriss"
	FieldFeatures      = "features"
	FieldBedCategories = "bettkategorien"
	FieldSyncHash      = "sync-hash"
	FieldSyncScope     = "sync-scope"
)

// Values of FieldSaleOrRent.
const (
	Sale   = "Kauf"
	Rental = "Miete"
)

const shortDescriptionRunes = 300
