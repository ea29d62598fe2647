package records

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/acris-unit-report/internal/config"
	"github.com/ginjaninja78/acris-unit-report/internal/csvparser"
	"github.com/ginjaninja78/acris-unit-report/internal/types"
	"github.com/ginjaninja78/acris-unit-report/internal/validation"
	"github.com/ginjaninja78/acris-unit-report/internal/xlsxparser"
)

// Source loads one building's records into a Store.
type Source interface {
	Load(ctx context.Context, filter types.Filter) (*Store, error)
}

// =============================================================================
// FILE SOURCE
// =============================================================================

// FileSource reads the three datasets from delimited files or workbooks.
type FileSource struct {
	// Paths of the legals, parties, and masters files.
	Legals  string
	Parties string
	Masters string

	// Format is config.SourceCSV or config.SourceXLSX.
	Format string

	// CSVSettings applies to delimited files.
	CSVSettings config.CSVSettings

	Logger logrus.FieldLogger
}

// NewFileSource builds a FileSource from the configuration.
func NewFileSource(cfg *config.MainConfig, logger logrus.FieldLogger) *FileSource {
	return &FileSource{
		Legals:      filepath.Join(cfg.DataDir, cfg.Files.Legals),
		Parties:     filepath.Join(cfg.DataDir, cfg.Files.Parties),
		Masters:     filepath.Join(cfg.DataDir, cfg.Files.Masters),
		Format:      cfg.Source,
		CSVSettings: cfg.CSVSettings,
		Logger:      logger,
	}
}

// Load reads all three files in full and filters them in memory. The
// files are small enough that no index is needed.
func (s *FileSource) Load(_ context.Context, filter types.Filter) (*Store, error) {
	legalTable, err := s.readTable(s.Legals)
	if err != nil {
		return nil, fmt.Errorf("failed to read legals: %w", err)
	}
	legals, err := DecodeLegals(legalTable, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to decode legals: %w", err)
	}

	partyTable, err := s.readTable(s.Parties)
	if err != nil {
		return nil, fmt.Errorf("failed to read parties: %w", err)
	}
	parties, err := DecodeParties(partyTable, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to decode parties: %w", err)
	}

	masterTable, err := s.readTable(s.Masters)
	if err != nil {
		return nil, fmt.Errorf("failed to read masters: %w", err)
	}
	masters, err := DecodeMasters(masterTable, s.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to decode masters: %w", err)
	}

	s.Logger.Debugf("read %d legals, %d parties, %d masters", len(legals), len(parties), len(masters))

	return NewStore(legals, parties, masters, filter), nil
}

// Check reads each file and verifies it carries the columns its decoder
// needs, without decoding any rows.
func (s *FileSource) Check() error {
	files := []struct {
		path    string
		columns []string
	}{
		{s.Legals, LegalColumns},
		{s.Parties, PartyColumns},
		{s.Masters, MasterColumns},
	}

	var errs []error
	for _, f := range files {
		table, err := s.readTable(f.path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.path, err))
			continue
		}
		if err := validation.RequireColumns(f.path, table.Headers, f.columns...); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// readTable reads one record file in the source's format.
func (s *FileSource) readTable(path string) (*csvparser.Table, error) {
	if s.Format == config.SourceXLSX {
		return xlsxparser.Parse(path)
	}
	return csvparser.Parse(path, s.CSVSettings)
}
