package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func date(t *testing.T, s string) *Date {
	t.Helper()
	tm, err := time.Parse(dateLayout, s)
	require.NoError(t, err)
	return &Date{Time: tm}
}

func TestValidVenues(t *testing.T) {
	assert.Empty(t, ValidVenues(CourtLevelAny))
	assert.Len(t, ValidVenues(CourtLevelFirstInstance), 107)
	assert.Len(t, ValidVenues(CourtLevelSecondInstance), 20)
	assert.Equal(t, ValidVenues(CourtLevelSecondInstance), ValidVenues(CourtLevelWholeRegion))

	// callers get a copy
	v := ValidVenues(CourtLevelFirstInstance)
	v[0] = "Atlantide"
	assert.Equal(t, "Agrigento", ValidVenues(CourtLevelFirstInstance)[0])
}

func TestIsValidVenue(t *testing.T) {
	canonical, ok := IsValidVenue(CourtLevelFirstInstance, "  milano ")
	assert.True(t, ok)
	assert.Equal(t, "Milano", canonical)

	_, ok = IsValidVenue(CourtLevelFirstInstance, "Lombardia")
	assert.False(t, ok)

	canonical, ok = IsValidVenue(CourtLevelSecondInstance, "lombardia")
	assert.True(t, ok)
	assert.Equal(t, "Lombardia", canonical)

	_, ok = IsValidVenue(CourtLevelAny, "Milano")
	assert.False(t, ok)
}

func TestSearchFilters_SetCourtLevelRevalidatesVenue(t *testing.T) {
	f := NewSearchFilters()
	f.SetCourtLevel(CourtLevelFirstInstance)
	require.NoError(t, f.SetVenue("Milano"))

	f.SetCourtLevel(CourtLevelSecondInstance)
	assert.Empty(t, f.Venue, "a province is not a valid second-instance venue")

	require.NoError(t, f.SetVenue("Lombardia"))
	f.SetCourtLevel(CourtLevelWholeRegion)
	assert.Equal(t, "Lombardia", f.Venue, "regions stay valid across regional levels")

	f.SetCourtLevel(CourtLevelAny)
	assert.Empty(t, f.Venue)
}

func TestSearchFilters_SetVenueRejectsOutsideDomain(t *testing.T) {
	f := NewSearchFilters()
	f.SetCourtLevel(CourtLevelFirstInstance)

	err := f.SetVenue("Lombardia")
	assert.ErrorIs(t, err, ErrInvalidVenue)
	assert.Empty(t, f.Venue)

	require.NoError(t, f.SetVenue("Milano"))
	require.NoError(t, f.SetVenue(""))
	assert.Empty(t, f.Venue)
}

func TestSearchFilters_Apply(t *testing.T) {
	f := NewSearchFilters()
	err := f.Apply(SearchFiltersPatch{
		Keywords:     ptr("  credito d'imposta "),
		DocumentType: ptr(DocumentTypeJudgment),
		Year:         ptr(2024),
		CourtLevel:   ptr(CourtLevelFirstInstance),
		Venue:        ptr("milano"),
		Outcome:      ptr(OutcomeFavorableToTaxpayer),
		Appeal:       ptr(false),
	})
	require.NoError(t, err)

	assert.Equal(t, "credito d'imposta", f.Keywords)
	assert.Equal(t, DocumentTypeJudgment, f.DocumentType)
	require.NotNil(t, f.Year)
	assert.Equal(t, 2024, *f.Year)
	assert.Equal(t, "Milano", f.Venue)
	require.NotNil(t, f.Appeal)
	assert.False(t, *f.Appeal)
	assert.Nil(t, f.Cassation)

	require.NoError(t, f.Apply(SearchFiltersPatch{ClearYear: true, ClearAppeal: true}))
	assert.Nil(t, f.Year)
	assert.Nil(t, f.Appeal)
	assert.Equal(t, "credito d'imposta", f.Keywords, "untouched fields are kept")
}

func TestSearchFilters_ApplyIsAtomic(t *testing.T) {
	f := NewSearchFilters()
	require.NoError(t, f.Apply(SearchFiltersPatch{Keywords: ptr("IMU")}))
	before := f

	err := f.Apply(SearchFiltersPatch{
		Keywords:   ptr("TARI"),
		CourtLevel: ptr(CourtLevelFirstInstance),
		Venue:      ptr("Toscana"),
	})
	assert.ErrorIs(t, err, ErrInvalidVenue)
	assert.Equal(t, before, f)

	err = f.Apply(SearchFiltersPatch{
		DateFrom: date(t, "2024-06-01"),
		DateTo:   date(t, "2024-01-01"),
	})
	assert.Error(t, err)
	assert.Equal(t, before, f)
}

func TestSearchFilters_ApplyRejectsImplausibleYear(t *testing.T) {
	f := NewSearchFilters()
	require.NoError(t, f.Apply(SearchFiltersPatch{Year: ptr(2020)}))

	for _, year := range []int{-5, 0, MinFilterYear - 1, time.Now().Year() + 1, 99999} {
		err := f.Apply(SearchFiltersPatch{Year: ptr(year)})
		assert.ErrorIs(t, err, ErrInvalidYear, "year %d", year)
		require.NotNil(t, f.Year)
		assert.Equal(t, 2020, *f.Year)
	}

	require.NoError(t, f.Apply(SearchFiltersPatch{Year: ptr(MinFilterYear)}))
	require.NoError(t, f.Apply(SearchFiltersPatch{Year: ptr(time.Now().Year())}))
	require.NoError(t, f.Apply(SearchFiltersPatch{Year: ptr(99999), ClearYear: true}), "clearing ignores the value")
	assert.Nil(t, f.Year)
}

func TestSearchFiltersPatch_UnmarshalRejectsUnknownEnum(t *testing.T) {
	var p SearchFiltersPatch
	err := json.Unmarshal([]byte(`{"court_level":"supreme"}`), &p)
	assert.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`{"outcome":"","date_from":"2023-01-31"}`), &p))
	require.NotNil(t, p.Outcome)
	assert.Equal(t, OutcomeAny, *p.Outcome)
	assert.Equal(t, "31/01/2023", p.DateFrom.Italian())

	assert.Error(t, json.Unmarshal([]byte(`{"date_to":"31/01/2023"}`), &p))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Tutti", DocumentType("").Label())
	assert.Equal(t, "Sentenza", DocumentTypeJudgment.Label())
	assert.Equal(t, "CGT 1° Grado", CourtLevelFirstInstance.Label())
	assert.Equal(t, "Favorevole al Contribuente", OutcomeFavorableToTaxpayer.Label())
	assert.Equal(t, "Compensate", CostAllocationCompensated.Label())
	assert.Empty(t, CourtLevel("supreme").Label())
}
