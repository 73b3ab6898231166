package models

// RoleCategory buckets listings into the sections rendered in the README.
type RoleCategory string

const (
	CategorySWE         RoleCategory = "swe"
	CategoryMLAI        RoleCategory = "ml_ai"
	CategoryDataScience RoleCategory = "data_science"
	CategoryQuant       RoleCategory = "quant"
	CategoryPM          RoleCategory = "pm"
	CategoryHardware    RoleCategory = "hardware"
	CategoryOther       RoleCategory = "other"
)

// ParseRoleCategory maps a free-form category string to a RoleCategory,
// defaulting to CategoryOther for anything unrecognized.
func ParseRoleCategory(s string) RoleCategory {
	switch normalizeKey(s) {
	case "swe":
		return CategorySWE
	case "ml_ai":
		return CategoryMLAI
	case "data_science":
		return CategoryDataScience
	case "quant":
		return CategoryQuant
	case "pm":
		return CategoryPM
	case "hardware":
		return CategoryHardware
	default:
		return CategoryOther
	}
}

type SponsorshipStatus string

const (
	SponsorshipSponsors      SponsorshipStatus = "sponsors"
	SponsorshipNone          SponsorshipStatus = "no_sponsorship"
	SponsorshipUSCitizenship SponsorshipStatus = "us_citizenship"
	SponsorshipUnknown       SponsorshipStatus = "unknown"
)

func ParseSponsorship(s string) SponsorshipStatus {
	switch normalizeKey(s) {
	case "sponsors":
		return SponsorshipSponsors
	case "no_sponsorship":
		return SponsorshipNone
	case "us_citizenship":
		return SponsorshipUSCitizenship
	default:
		return SponsorshipUnknown
	}
}

type ListingStatus string

const (
	StatusOpen    ListingStatus = "open"
	StatusClosed  ListingStatus = "closed"
	StatusUnknown ListingStatus = "unknown"
)

type IndustrySector string

const (
	IndustryFintech       IndustrySector = "fintech"
	IndustryHealthcare    IndustrySector = "healthcare"
	IndustryEnergy        IndustrySector = "energy"
	IndustryEcommerce     IndustrySector = "ecommerce"
	IndustryBanking       IndustrySector = "banking"
	IndustryAutomotive    IndustrySector = "automotive"
	IndustryGaming        IndustrySector = "gaming"
	IndustrySocialMedia   IndustrySector = "social_media"
	IndustryCybersecurity IndustrySector = "cybersecurity"
	IndustryCloud         IndustrySector = "cloud"
	IndustryEnterprise    IndustrySector = "enterprise"
	IndustryAIML          IndustrySector = "ai_ml"
	IndustryAerospace     IndustrySector = "aerospace"
	IndustryTelecom       IndustrySector = "telecom"
	IndustryMedia         IndustrySector = "media"
	IndustryFood          IndustrySector = "food"
	IndustryLogistics     IndustrySector = "logistics"
	IndustrySemiconductor IndustrySector = "semiconductor"
	IndustryOther         IndustrySector = "other"
)

func ParseIndustry(s string) IndustrySector {
	switch v := IndustrySector(normalizeKey(s)); v {
	case IndustryFintech, IndustryHealthcare, IndustryEnergy, IndustryEcommerce,
		IndustryBanking, IndustryAutomotive, IndustryGaming, IndustrySocialMedia,
		IndustryCybersecurity, IndustryCloud, IndustryEnterprise, IndustryAIML,
		IndustryAerospace, IndustryTelecom, IndustryMedia, IndustryFood,
		IndustryLogistics, IndustrySemiconductor:
		return v
	default:
		return IndustryOther
	}
}

// ATSType identifies which applicant tracking system a source board runs on.
type ATSType string

const (
	ATSGreenhouse      ATSType = "greenhouse"
	ATSLever           ATSType = "lever"
	ATSAshby           ATSType = "ashby"
	ATSWorkday         ATSType = "workday"
	ATSSmartRecruiters ATSType = "smartrecruiters"
	ATSICIMS           ATSType = "icims"
	ATSCustom          ATSType = "custom"
)
