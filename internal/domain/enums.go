package domain

import "strings"

// EngineID identifies an OCR engine in the recognition chain.
// Order of preference is fixed where the chain is constructed, not here.
type EngineID string

const (
	EngineGoogleVision EngineID = "google_vision"
	EngineAzureVision  EngineID = "azure_vision"
	EngineTesseract    EngineID = "tesseract_local"
)

// DocumentType is the classified kind of an ingested document.
type DocumentType string

const (
	DocTypeReceipt       DocumentType = "Receipt"
	DocTypeBill          DocumentType = "Bill"
	DocTypeInvoice       DocumentType = "Invoice"
	DocTypeInsurance     DocumentType = "Insurance Policy"
	DocTypeMedical       DocumentType = "Medical Record"
	DocTypePrescription  DocumentType = "Prescription"
	DocTypeBankStatement DocumentType = "Bank Statement"
	DocTypeIDDocument    DocumentType = "ID Document"
	DocTypeContract      DocumentType = "Contract"
	DocTypeWarranty      DocumentType = "Warranty"
	DocTypeTaxDocument   DocumentType = "Tax Document"
	DocTypeUnknown       DocumentType = "Unknown"
)

// LifeDomain is a dashboard section an ingested document can be filed under.
type LifeDomain string

const (
	DomainFinance   LifeDomain = "finance"
	DomainHealth    LifeDomain = "health"
	DomainHome      LifeDomain = "home"
	DomainPets      LifeDomain = "pets"
	DomainInsurance LifeDomain = "insurance"
	DomainVehicles  LifeDomain = "vehicles"
	DomainPersonal  LifeDomain = "personal"
	DomainOther     LifeDomain = "other"
)

// KnownLifeDomains lists every valid LifeDomain, for validating model
// output and entry creation requests.
var KnownLifeDomains = map[LifeDomain]bool{
	DomainFinance:   true,
	DomainHealth:    true,
	DomainHome:      true,
	DomainPets:      true,
	DomainInsurance: true,
	DomainVehicles:  true,
	DomainPersonal:  true,
	DomainOther:     true,
}

// NormalizeLifeDomain canonicalizes case and surrounding whitespace. The
// result may still be unknown; callers that must reject bad input check
// KnownLifeDomains afterwards.
func NormalizeLifeDomain(s string) LifeDomain {
	return LifeDomain(strings.ToLower(strings.TrimSpace(s)))
}

// CoerceLifeDomain maps arbitrary model output onto a known domain,
// falling back to the catch-all.
func CoerceLifeDomain(s string) LifeDomain {
	d := NormalizeLifeDomain(s)
	if KnownLifeDomains[d] {
		return d
	}
	return DomainOther
}

// AllowedContentTypes maps accepted MIME content types to a short format tag.
var AllowedContentTypes = map[string]string{
	"application/pdf": "pdf",
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/webp":      "webp",
}

// IsImageContentType reports whether the declared media type is an image.
func IsImageContentType(ct string) bool {
	return ct == "image/jpeg" || ct == "image/png" || ct == "image/webp"
}
