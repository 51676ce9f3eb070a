package backend

import "strings"

// The upstream KPI API spells several enum members the way they appear
// here, misspellings included. The wire values must match exactly; the
// DisplayName helpers produce the human-readable form.

type Sector string

const (
	SectorEconomicInfrastructure Sector = "ECONOMIC_INFRACSTRUCTURE"
	SectorEconomy                Sector = "ECONOMY"
	SectorEducation              Sector = "EDUCATION"
	SectorEnvironment            Sector = "ENVIROMENT"
	SectorHealth                 Sector = "HEALTH"
	SectorHumanSettlements       Sector = "HUMAN_SETTLEMENTS"
	SectorInternationalRelations Sector = "INTERNATIONAL_RELATIONS"
	SectorPublicService          Sector = "PUBLIC_SERVICE"
	SectorRural                  Sector = "RURAL"
	SectorSafety                 Sector = "SAFETY"
	SectorSkills                 Sector = "SKILLS"
	SectorSocialCohesion         Sector = "SOCIAL_COHESION"
	SectorSocialProtection       Sector = "SOCIAL_PROTECTION"
)

func Sectors() []Sector {
	return []Sector{
		SectorEconomicInfrastructure,
		SectorEconomy,
		SectorEducation,
		SectorEnvironment,
		SectorHealth,
		SectorHumanSettlements,
		SectorInternationalRelations,
		SectorPublicService,
		SectorRural,
		SectorSafety,
		SectorSkills,
		SectorSocialCohesion,
		SectorSocialProtection,
	}
}

type Province string

const (
	ProvinceEasternCape  Province = "EASTERN_CAPE"
	ProvinceFreeState    Province = "FREE_STATE"
	ProvinceGauteng      Province = "GAUTENG"
	ProvinceKwaZuluNatal Province = "KWAZULU_NATAL"
	ProvinceLimpopo      Province = "LIMPOPO"
	ProvinceMpumalanga   Province = "MPUMALANGA"
	ProvinceNorthernCape Province = "NORTHERN_CAPE"
	ProvinceNorthWest    Province = "NORTH_WEST"
	ProvinceWesternCape  Province = "WESTERN_CAPE"
)

func Provinces() []Province {
	return []Province{
		ProvinceEasternCape,
		ProvinceFreeState,
		ProvinceGauteng,
		ProvinceKwaZuluNatal,
		ProvinceLimpopo,
		ProvinceMpumalanga,
		ProvinceNorthernCape,
		ProvinceNorthWest,
		ProvinceWesternCape,
	}
}

type Quarter string

const (
	QuarterQ1 Quarter = "Q1"
	QuarterQ2 Quarter = "Q2"
	QuarterQ3 Quarter = "Q3"
	QuarterQ4 Quarter = "Q4"
)

func Quarters() []Quarter {
	return []Quarter{QuarterQ1, QuarterQ2, QuarterQ3, QuarterQ4}
}

type ProgressRating string

const (
	RatingNone  ProgressRating = "NONE"
	RatingRed   ProgressRating = "RED"
	RatingAmber ProgressRating = "AMBER"
	RatingBlue  ProgressRating = "BLUE"
	RatingGreen ProgressRating = "GREEN"
)

// Percentage maps a rating onto the 0-100 scale the dashboard charts plot.
func (r ProgressRating) Percentage() int {
	switch r {
	case RatingRed:
		return 25
	case RatingAmber:
		return 50
	case RatingBlue:
		return 75
	case RatingGreen:
		return 100
	default:
		return 0
	}
}

func (s Sector) DisplayName() string   { return titleCase(string(s)) }
func (p Province) DisplayName() string { return titleCase(string(p)) }

// titleCase turns an enum member like "EASTERN_CAPE" into "Eastern Cape".
func titleCase(s string) string {
	words := strings.Split(strings.ReplaceAll(strings.ToLower(s), "_", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}

	return strings.Join(words, " ")
}
