package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidVenue is returned when a venue is outside the domain of the current court level
	ErrInvalidVenue = errors.New("venue not valid for the selected court level")
	ErrInvalidYear  = errors.New("year out of range")
)

// MinFilterYear is the first year of decisions of the tax courts
const MinFilterYear = 1972

// DocumentType represents the kind of decision searched for
type DocumentType string

const (
	DocumentTypeAny           DocumentType = "any"
	DocumentTypeJudgment      DocumentType = "judgment"
	DocumentTypeReferralOrder DocumentType = "referral_order"
)

var documentTypeLabels = map[DocumentType]string{
	DocumentTypeAny:           "Tutti",
	DocumentTypeJudgment:      "Sentenza",
	DocumentTypeReferralOrder: "Ordinanza",
}

// Label returns the label shown by the jurisprudence database
func (d DocumentType) Label() string { return documentTypeLabels[d.orAny()] }

func (d DocumentType) orAny() DocumentType {
	if d == "" {
		return DocumentTypeAny
	}
	return d
}

// UnmarshalJSON rejects unknown document types
func (d *DocumentType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, (*string)(d), "document type", keysOf(documentTypeLabels))
}

// CourtLevel represents the level of the tax court
type CourtLevel string

const (
	CourtLevelAny            CourtLevel = "any"
	CourtLevelFirstInstance  CourtLevel = "first_instance"
	CourtLevelSecondInstance CourtLevel = "second_instance"
	CourtLevelWholeRegion    CourtLevel = "whole_region"
)

var courtLevelLabels = map[CourtLevel]string{
	CourtLevelAny:            "Tutti",
	CourtLevelFirstInstance:  "CGT 1° Grado",
	CourtLevelSecondInstance: "CGT 2° Grado",
	CourtLevelWholeRegion:    "Intera Regione",
}

// Label returns the label shown by the jurisprudence database
func (l CourtLevel) Label() string { return courtLevelLabels[l.orAny()] }

func (l CourtLevel) orAny() CourtLevel {
	if l == "" {
		return CourtLevelAny
	}
	return l
}

// UnmarshalJSON rejects unknown court levels
func (l *CourtLevel) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, (*string)(l), "court level", keysOf(courtLevelLabels))
}

// Outcome represents the outcome of the decision
type Outcome string

const (
	OutcomeAny                 Outcome = "any"
	OutcomeFavorableToTaxpayer Outcome = "favorable_to_taxpayer"
	OutcomeFavorableToOffice   Outcome = "favorable_to_office"
	OutcomePartial             Outcome = "partial"
)

var outcomeLabels = map[Outcome]string{
	OutcomeAny:                 "Tutti",
	OutcomeFavorableToTaxpayer: "Favorevole al Contribuente",
	OutcomeFavorableToOffice:   "Favorevole all'Ufficio",
	OutcomePartial:             "Parziale accoglimento",
}

// Label returns the label shown by the jurisprudence database
func (o Outcome) Label() string { return outcomeLabels[o.orAny()] }

func (o Outcome) orAny() Outcome {
	if o == "" {
		return OutcomeAny
	}
	return o
}

// UnmarshalJSON rejects unknown outcomes
func (o *Outcome) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, (*string)(o), "outcome", keysOf(outcomeLabels))
}

// CostAllocation represents how the court allocated litigation costs
type CostAllocation string

const (
	CostAllocationAny               CostAllocation = "any"
	CostAllocationCompensated       CostAllocation = "compensated"
	CostAllocationChargedToTaxpayer CostAllocation = "charged_to_taxpayer"
	CostAllocationChargedToOffice   CostAllocation = "charged_to_office"
)

var costAllocationLabels = map[CostAllocation]string{
	CostAllocationAny:               "Tutte",
	CostAllocationCompensated:       "Compensate",
	CostAllocationChargedToTaxpayer: "A carico del Contribuente",
	CostAllocationChargedToOffice:   "A carico dell'Ufficio",
}

// Label returns the label shown by the jurisprudence database
func (c CostAllocation) Label() string { return costAllocationLabels[c.orAny()] }

func (c CostAllocation) orAny() CostAllocation {
	if c == "" {
		return CostAllocationAny
	}
	return c
}

// UnmarshalJSON rejects unknown cost allocations
func (c *CostAllocation) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, (*string)(c), "cost allocation", keysOf(costAllocationLabels))
}

// Date is a calendar date serialized as YYYY-MM-DD
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

// Italian returns the date as shown by the jurisprudence database
func (d Date) Italian() string {
	return d.Format("02/01/2006")
}

// SearchFilters holds the criteria of a sequential jurisprudence search.
// Zero values mean "unspecified" and are excluded from the generated instructions.
type SearchFilters struct {
	Keywords       string         `json:"keywords"`
	DocumentType   DocumentType   `json:"document_type"`
	Year           *int           `json:"year,omitempty"`
	CourtLevel     CourtLevel     `json:"court_level"`
	Venue          string         `json:"venue,omitempty"`
	Appeal         *bool          `json:"appeal,omitempty"`
	Cassation      *bool          `json:"cassation,omitempty"`
	Outcome        Outcome        `json:"outcome"`
	CostAllocation CostAllocation `json:"cost_allocation"`
	DateFrom       *Date          `json:"date_from,omitempty"`
	DateTo         *Date          `json:"date_to,omitempty"`
}

// NewSearchFilters returns filters with every field unspecified
func NewSearchFilters() SearchFilters {
	return SearchFilters{
		DocumentType:   DocumentTypeAny,
		CourtLevel:     CourtLevelAny,
		Outcome:        OutcomeAny,
		CostAllocation: CostAllocationAny,
	}
}

// SetCourtLevel changes the court level and discards a venue that is not valid for it
func (f *SearchFilters) SetCourtLevel(level CourtLevel) {
	f.CourtLevel = level.orAny()
	if f.Venue == "" {
		return
	}
	if canonical, ok := IsValidVenue(f.CourtLevel, f.Venue); ok {
		f.Venue = canonical
		return
	}
	f.Venue = ""
}

// SetVenue sets the venue if it belongs to the domain of the current court level.
// An empty value clears the venue.
func (f *SearchFilters) SetVenue(venue string) error {
	venue = strings.TrimSpace(venue)
	if venue == "" {
		f.Venue = ""
		return nil
	}
	canonical, ok := IsValidVenue(f.CourtLevel, venue)
	if !ok {
		return fmt.Errorf("%w: %q for court level %s", ErrInvalidVenue, venue, f.CourtLevel.orAny())
	}
	f.Venue = canonical
	return nil
}

// SearchFiltersPatch is a partial update of SearchFilters. Nil fields are left untouched.
type SearchFiltersPatch struct {
	Keywords       *string         `json:"keywords"`
	DocumentType   *DocumentType   `json:"document_type"`
	Year           *int            `json:"year"`
	ClearYear      bool            `json:"clear_year"`
	CourtLevel     *CourtLevel     `json:"court_level"`
	Venue          *string         `json:"venue"`
	Appeal         *bool           `json:"appeal"`
	ClearAppeal    bool            `json:"clear_appeal"`
	Cassation      *bool           `json:"cassation"`
	ClearCassation bool            `json:"clear_cassation"`
	Outcome        *Outcome        `json:"outcome"`
	CostAllocation *CostAllocation `json:"cost_allocation"`
	DateFrom       *Date           `json:"date_from"`
	DateTo         *Date           `json:"date_to"`
	ClearDates     bool            `json:"clear_dates"`
}

// Apply applies the patch. The court level is applied before the venue so that a
// venue sent together with a new court level is checked against the new domain.
// On error the filters are left unchanged.
func (f *SearchFilters) Apply(p SearchFiltersPatch) error {
	next := *f

	if p.Keywords != nil {
		next.Keywords = strings.TrimSpace(*p.Keywords)
	}
	if p.DocumentType != nil {
		next.DocumentType = p.DocumentType.orAny()
	}
	if p.ClearYear {
		next.Year = nil
	} else if p.Year != nil {
		year := *p.Year
		if maxYear := time.Now().Year(); year < MinFilterYear || year > maxYear {
			return fmt.Errorf("%w: %d not in %d-%d", ErrInvalidYear, year, MinFilterYear, maxYear)
		}
		next.Year = &year
	}
	if p.CourtLevel != nil {
		next.SetCourtLevel(*p.CourtLevel)
	}
	if p.Venue != nil {
		if err := next.SetVenue(*p.Venue); err != nil {
			return err
		}
	}
	if p.ClearAppeal {
		next.Appeal = nil
	} else if p.Appeal != nil {
		v := *p.Appeal
		next.Appeal = &v
	}
	if p.ClearCassation {
		next.Cassation = nil
	} else if p.Cassation != nil {
		v := *p.Cassation
		next.Cassation = &v
	}
	if p.Outcome != nil {
		next.Outcome = p.Outcome.orAny()
	}
	if p.CostAllocation != nil {
		next.CostAllocation = p.CostAllocation.orAny()
	}
	if p.ClearDates {
		next.DateFrom, next.DateTo = nil, nil
	} else {
		if p.DateFrom != nil {
			d := *p.DateFrom
			next.DateFrom = &d
		}
		if p.DateTo != nil {
			d := *p.DateTo
			next.DateTo = &d
		}
	}
	if next.DateFrom != nil && next.DateTo != nil && next.DateTo.Before(next.DateFrom.Time) {
		return fmt.Errorf("date_to %s precedes date_from %s", next.DateTo.Format(dateLayout), next.DateFrom.Format(dateLayout))
	}

	*f = next
	return nil
}

func unmarshalEnum(data []byte, dst *string, kind string, allowed []string) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*dst = "any"
		return nil
	}
	for _, a := range allowed {
		if s == a {
			*dst = s
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q", kind, s)
}

func keysOf[K ~string, V any](m map[K]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	return keys
}
