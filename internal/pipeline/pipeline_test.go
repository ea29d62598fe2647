package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/acris-unit-report/internal/aggregator"
	"github.com/ginjaninja78/acris-unit-report/internal/config"
	"github.com/ginjaninja78/acris-unit-report/internal/records"
	"github.com/ginjaninja78/acris-unit-report/internal/rented"
	"github.com/ginjaninja78/acris-unit-report/internal/report"
	"github.com/ginjaninja78/acris-unit-report/internal/types"
	"github.com/ginjaninja78/acris-unit-report/internal/validation"
)

var building = types.Filter{Block: 149, Lot: 1102}

type staticSource struct {
	legals  []types.LegalRecord
	parties []types.PartyRecord
	masters []types.MasterRecord
	err     error
}

func (s *staticSource) Load(_ context.Context, filter types.Filter) (*records.Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	return records.NewStore(s.legals, s.parties, s.masters, filter), nil
}

type failingSink struct{}

func (failingSink) Write([]types.UnitSummary) error { return errors.New("read-only filesystem") }

func fixture() *staticSource {
	amount := decimal.NewFromInt(12345000)
	return &staticSource{
		legals: []types.LegalRecord{
			{DocumentID: 1, Block: 149, Lot: 1102, Unit: "42E"},
			{DocumentID: 2, Block: 149, Lot: 1102, Unit: "15A"},
			{DocumentID: 3, Block: 149, Lot: 1102, Unit: "17B"},
			{DocumentID: 4, Block: 150, Lot: 1102, Unit: "15A"},
		},
		parties: []types.PartyRecord{
			{DocumentID: 1, Name: config.DefaultExcludedBuyer},
			{DocumentID: 1, Name: "JANE DOE"},
			{DocumentID: 2, Name: "ACME LLC"},
		},
		masters: []types.MasterRecord{
			{DocumentID: 2, RecordedDate: time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), Amount: &amount},
		},
	}
}

func newPipeline(t *testing.T, source records.Source, opts aggregator.Options) *Pipeline {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return New(source, rented.New("17B"), opts, logger)
}

func TestRun_WritesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	p := newPipeline(t, fixture(), aggregator.OptionsFromConfig(config.Default()))

	result, err := p.Run(context.Background(), building, &report.CSVSink{Path: path})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, report.Summary{UnitsSold: 3, LLCs: 1}, result.Summary)
	assert.Equal(t, 3, result.Stats.Legals)
	assert.Equal(t, 3, result.Stats.Parties)
	assert.Equal(t, 1, result.Stats.Masters)
	assert.Equal(t, 1, result.Stats.Rented)
	assert.False(t, result.Stats.EndTime.Before(result.Stats.StartTime))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "unit,floor,line,beds,baths,date,amount,isLLC,rented,buyers", lines[0])
	assert.Equal(t, `15A,15,A,2,2,03/01/20,12.35,true,false,"[""ACME LLC""]"`, lines[1])
	assert.Equal(t, `17B,17,B,1,1,,,false,true,[]`, lines[2])
	assert.Equal(t, `42E,42,E,3,2,,,false,false,"[""JANE DOE""]"`, lines[3])
}

func TestRun_LoadFailure(t *testing.T) {
	p := newPipeline(t, &staticSource{err: errors.New("connection refused")}, aggregator.Options{})

	_, err := p.Run(context.Background(), building, report.DiscardSink{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load records: connection refused")
}

func TestRun_StrictMalformedUnit(t *testing.T) {
	source := fixture()
	source.legals = append(source.legals, types.LegalRecord{DocumentID: 9, Block: 149, Lot: 1102, Unit: "9"})
	p := newPipeline(t, source, aggregator.Options{UnitPolicy: config.UnitPolicyStrict})

	_, err := p.Run(context.Background(), building, report.DiscardSink{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, validation.ErrMalformedUnit))
}

func TestRun_SinkFailure(t *testing.T) {
	p := newPipeline(t, fixture(), aggregator.Options{})

	result, err := p.Run(context.Background(), building, failingSink{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, report.ErrSinkWrite))
	assert.Len(t, result.Rows, 3)
	assert.Equal(t, 3, result.Summary.UnitsSold)
}

func TestNewSink(t *testing.T) {
	cfg := config.Default()

	assert.IsType(t, report.DiscardSink{}, NewSink(cfg, "out.csv", true))
	assert.IsType(t, &report.CSVSink{}, NewSink(cfg, "out.csv", false))

	cfg.OutputFormat = config.FormatXLSX
	sink, ok := NewSink(cfg, "out.xlsx", false).(*report.XLSXSink)
	require.True(t, ok)
	assert.Equal(t, "out.xlsx", sink.Path)
}

func TestReportPath(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = "out"
	cfg.ReportNameFormat = "units_{block}_{lot}"

	assert.Equal(t, filepath.Join("out", "units_149_1102.csv"), ReportPath(cfg, building))
}
