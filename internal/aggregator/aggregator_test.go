package aggregator

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/acris-unit-report/internal/config"
	"github.com/ginjaninja78/acris-unit-report/internal/records"
	"github.com/ginjaninja78/acris-unit-report/internal/rented"
	"github.com/ginjaninja78/acris-unit-report/internal/types"
	"github.com/ginjaninja78/acris-unit-report/internal/validation"
)

var building = types.Filter{Block: 149, Lot: 1102}

func amount(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func legal(id int64, unit string) types.LegalRecord {
	return types.LegalRecord{DocumentID: id, Block: building.Block, Lot: building.Lot, Unit: unit}
}

func defaultAggregator(t *testing.T) (*Aggregator, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	return New(OptionsFromConfig(config.Default()), logger), hook
}

func TestAggregate_Scenarios(t *testing.T) {
	store := records.NewStore(
		[]types.LegalRecord{
			legal(4, "42E"),
			legal(1, "15A"),
			legal(5, "42D"),
			legal(6, "20C"),
			legal(7, "17B"),
		},
		[]types.PartyRecord{
			{DocumentID: 4, Name: "138 WILLOUGHBY LLC"},
			{DocumentID: 4, Name: "JANE DOE"},
			{DocumentID: 5, Name: "ACME TRUST"},
		},
		[]types.MasterRecord{
			{DocumentID: 1, RecordedDate: day(2020, 3, 1), Amount: amount(12345000)},
		},
		building,
	)

	agg, _ := defaultAggregator(t)
	rows, err := agg.Aggregate(store, rented.New("17B"))
	require.NoError(t, err)
	require.Len(t, rows, 5)

	var units []string
	for _, row := range rows {
		units = append(units, row.Unit)
	}
	assert.Equal(t, []string{"15A", "17B", "20C", "42D", "42E"}, units)

	r15A := rows[0]
	assert.Equal(t, "15", r15A.Floor)
	assert.Equal(t, "A", r15A.Line)
	require.NotNil(t, r15A.Beds)
	assert.Equal(t, "2", *r15A.Beds)
	assert.Equal(t, "2", *r15A.Baths)
	require.NotNil(t, r15A.Amount)
	assert.Equal(t, "12.35", r15A.Amount.String())
	require.NotNil(t, r15A.Date)
	assert.Equal(t, "03/01/20", *r15A.Date)
	assert.False(t, r15A.Rented)

	assert.True(t, rows[1].Rented)

	r20C := rows[2]
	assert.Nil(t, r20C.Amount)
	assert.Nil(t, r20C.Date)
	assert.Empty(t, r20C.Buyers)
	assert.False(t, r20C.IsLLC)

	r42D := rows[3]
	assert.Equal(t, []string{"ACME TRUST"}, r42D.Buyers)
	assert.True(t, r42D.IsLLC)
	assert.Equal(t, "3", *r42D.Beds)
	assert.Equal(t, "3", *r42D.Baths)

	r42E := rows[4]
	assert.Equal(t, []string{"JANE DOE"}, r42E.Buyers)
	assert.False(t, r42E.IsLLC)
	assert.Equal(t, "3", *r42E.Beds)
	assert.Equal(t, "2", *r42E.Baths)
}

func TestSummarize_MultipleFilings(t *testing.T) {
	store := records.NewStore(
		[]types.LegalRecord{legal(1, "30K"), legal(2, "30K"), legal(3, "30K")},
		[]types.PartyRecord{
			{DocumentID: 1, Name: "JOHN ROE"},
			{DocumentID: 2, Name: "JOHN ROE"},
			{DocumentID: 2, Name: "MARY ROE"},
			{DocumentID: 3, Name: "ROE HOLDINGS LTD"},
		},
		[]types.MasterRecord{
			{DocumentID: 1, RecordedDate: day(2018, 6, 1), Amount: amount(0)},
			{DocumentID: 2, RecordedDate: day(2017, 1, 15)},
			{DocumentID: 3, RecordedDate: day(2019, 2, 2), Amount: amount(9990000)},
		},
		building,
	)

	agg, _ := defaultAggregator(t)
	row, err := agg.Summarize(store, "30K", nil)
	require.NoError(t, err)

	assert.Equal(t, "01/15/17", *row.Date)
	require.NotNil(t, row.Amount)
	assert.Equal(t, "9.99", row.Amount.String())
	assert.Equal(t, []string{"JOHN ROE", "MARY ROE", "ROE HOLDINGS LTD"}, row.Buyers)
	assert.True(t, row.IsLLC)
	assert.Equal(t, "1", *row.Beds)
}

func TestSummarize_Unclassified(t *testing.T) {
	store := records.NewStore([]types.LegalRecord{legal(1, "39A"), legal(2, "PHA"), legal(3, "15Z")}, nil, nil, building)
	agg, _ := defaultAggregator(t)

	for _, unit := range store.Units() {
		row, err := agg.Summarize(store, unit, nil)
		require.NoError(t, err, unit)
		assert.NotEmpty(t, row.Floor, unit)
		assert.Nil(t, row.Beds, unit)
		assert.Nil(t, row.Baths, unit)
	}
}

func TestSummarize_MalformedUnitLenient(t *testing.T) {
	store := records.NewStore([]types.LegalRecord{legal(1, "5A")}, nil, nil, building)
	agg, hook := defaultAggregator(t)

	rows, err := agg.Aggregate(store, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "5A", rows[0].Unit)
	assert.Empty(t, rows[0].Floor)
	assert.Empty(t, rows[0].Line)
	assert.Nil(t, rows[0].Beds)

	require.NotEmpty(t, hook.Entries)
	assert.Equal(t, logrus.WarnLevel, hook.Entries[0].Level)
}

func TestSummarize_MalformedUnitStrict(t *testing.T) {
	store := records.NewStore([]types.LegalRecord{legal(1, "15A"), legal(2, "5A")}, nil, nil, building)
	logger, _ := test.NewNullLogger()
	agg := New(Options{UnitPolicy: config.UnitPolicyStrict}, logger)

	rows, err := agg.Aggregate(store, nil)
	require.Error(t, err)
	assert.Nil(t, rows)
	assert.True(t, errors.Is(err, validation.ErrMalformedUnit))
}

func TestScaleAmount(t *testing.T) {
	tests := []struct {
		raw  int64
		want string
	}{
		{12345000, "12.35"},
		{1234500, "1.23"}, // round(amount / 10000) / 100, so 123.45 rounds to 123 first
		{15000, "0.02"},
		{4999, "0"},
		{-12345000, "-12.35"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ScaleAmount(decimal.NewFromInt(tt.raw)).String(), tt.raw)
	}
}

func TestScaleAmount_Deterministic(t *testing.T) {
	raw := decimal.RequireFromString("23456789.5")
	assert.True(t, ScaleAmount(raw).Equal(ScaleAmount(raw)))
}

func TestFirstAmount(t *testing.T) {
	assert.Nil(t, FirstAmount(nil))
	assert.Nil(t, FirstAmount([]types.MasterRecord{{Amount: amount(0)}, {}}))

	got := FirstAmount([]types.MasterRecord{{}, {Amount: amount(7)}, {Amount: amount(8)}})
	require.NotNil(t, got)
	assert.Equal(t, "7", got.String())
}

func TestEarliestDate(t *testing.T) {
	assert.Nil(t, EarliestDate([]types.MasterRecord{{}}))

	got := EarliestDate([]types.MasterRecord{
		{RecordedDate: day(2021, 12, 31)},
		{},
		{RecordedDate: day(2009, 7, 4)},
	})
	require.NotNil(t, got)
	assert.Equal(t, "07/04/09", *got)
}

func TestBuyers(t *testing.T) {
	parties := []types.PartyRecord{
		{Name: "B"}, {Name: "SPONSOR"}, {Name: "A"}, {Name: "B"}, {Name: "SPONSOR"},
	}
	assert.Equal(t, []string{"B", "A"}, Buyers(parties, "SPONSOR"))
	assert.Equal(t, []string{}, Buyers(nil, "SPONSOR"))
}

func TestHasEntity(t *testing.T) {
	markers := config.DefaultEntityMarkers

	assert.True(t, HasEntity([]string{"JANE DOE", "ACME LLC"}, markers))
	assert.True(t, HasEntity([]string{"FOO LTD"}, markers))
	assert.False(t, HasEntity([]string{"acme llc"}, markers))
	assert.False(t, HasEntity(nil, markers))
	assert.False(t, HasEntity([]string{"ACME LLC"}, []string{""}))
}
