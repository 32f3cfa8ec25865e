package importer

import (
	"math"
	"strings"

	"github.com/ignite/seller-directory/internal/domain"
)

// highValueTitles are the media-seller roles that mark a contact as high
// value for relevance scoring. Matching is case-insensitive substring.
var highValueTitles = []string{
	"cmo",
	"media director",
	"brand manager",
	"group agency director",
	"media buyer",
	"media planner",
	"advertising director",
	"marketing director",
}

// decisionMakerTitles mark a contact as holding budget or hiring authority.
var decisionMakerTitles = []string{
	"director",
	"manager",
	"head",
	"vp",
	"vice president",
	"chief",
}

// Score computes the run-level quality summary and media-seller stats for
// a normalized batch. It never mutates its inputs and returns all-zero
// scores for an empty batch rather than an error.
func Score(companies []domain.NormalizedCompany, contacts []domain.NormalizedContact) (domain.QualitySummary, domain.MediaSellerStats) {
	stats := domain.MediaSellerStats{TotalContacts: len(contacts)}

	var contactPoints int
	for _, c := range contacts {
		contactPoints += contactCompleteness(c)

		title := strings.ToLower(c.Title)
		if containsAny(title, highValueTitles) {
			stats.HighValueContacts++
		}
		if strings.Contains(title, "cmo") || strings.Contains(title, "chief") {
			stats.CLevelContacts++
		}
		if containsAny(title, decisionMakerTitles) {
			stats.DecisionMakers++
		}
		if c.Email != "" {
			stats.ContactsWithEmail++
		}
		if c.Phone != "" {
			stats.ContactsWithPhone++
		}
		if c.LinkedinURL != "" {
			stats.ContactsWithLinkedIn++
		}
	}

	var companyPoints int
	for _, c := range companies {
		companyPoints += companyCompleteness(c)
	}

	summary := domain.QualitySummary{}
	if len(companies) > 0 {
		summary.Companies = roundDiv(companyPoints, len(companies))
	}
	if len(contacts) > 0 {
		summary.Contacts = roundDiv(contactPoints, len(contacts))
		summary.MediaRelevance = roundDiv(stats.HighValueContacts*100, stats.TotalContacts)
	}
	if total := len(companies) + len(contacts); total > 0 {
		summary.Completeness = roundDiv(companyPoints+contactPoints, total)
		// Deliberately simple and explainable: the plain average of the
		// three dimensions, not a weighted model.
		summary.Overall = int(math.Round(float64(summary.Companies+summary.Contacts+summary.MediaRelevance) / 3))
	}
	return summary, stats
}

// companyCompleteness scores 0-100: name 25, domain 25, industry 25,
// size-or-headquarters 25.
func companyCompleteness(c domain.NormalizedCompany) int {
	score := 0
	if c.Name != "" {
		score += 25
	}
	if c.Domain != "" {
		score += 25
	}
	if c.Industry != "" {
		score += 25
	}
	if c.EmployeeCount != nil || c.Headquarters != "" {
		score += 25
	}
	return score
}

// contactCompleteness scores 0-100: name 30, email 25, title 25,
// phone-or-linkedin 20.
func contactCompleteness(c domain.NormalizedContact) int {
	score := 0
	if c.FirstName != "" || c.LastName != "" {
		score += 30
	}
	if c.Email != "" {
		score += 25
	}
	if c.Title != "" {
		score += 25
	}
	if c.Phone != "" || c.LinkedinURL != "" {
		score += 20
	}
	return score
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func roundDiv(numerator, denominator int) int {
	if denominator == 0 {
		return 0
	}
	return int(math.Round(float64(numerator) / float64(denominator)))
}
