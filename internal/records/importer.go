package records

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ginjaninja78/acris-unit-report/internal/config"
	"github.com/ginjaninja78/acris-unit-report/internal/csvparser"
	"github.com/ginjaninja78/acris-unit-report/internal/types"
	"github.com/ginjaninja78/acris-unit-report/internal/validation"
)

// DefaultBatchSize is the number of documents sent per insert.
const DefaultBatchSize = 1000

// Dataset names one of the three record collections.
type Dataset string

const (
	DatasetLegals  Dataset = "legals"
	DatasetParties Dataset = "parties"
	DatasetMasters Dataset = "masters"
)

// Datasets lists every dataset in load order.
var Datasets = []Dataset{DatasetLegals, DatasetParties, DatasetMasters}

// Columns returns the normalized columns the dataset's rows must carry.
func (d Dataset) Columns() []string {
	switch d {
	case DatasetLegals:
		return LegalColumns
	case DatasetParties:
		return PartyColumns
	case DatasetMasters:
		return MasterColumns
	}
	return nil
}

// Pick returns the entry of files belonging to the dataset.
func (d Dataset) Pick(files config.RecordFiles) string {
	switch d {
	case DatasetLegals:
		return files.Legals
	case DatasetParties:
		return files.Parties
	case DatasetMasters:
		return files.Masters
	}
	return ""
}

// ImportStats counts what one import did.
type ImportStats struct {
	Dataset  Dataset
	Rows     int
	Inserted int
	Skipped  int
}

// =============================================================================
// IMPORTER
// =============================================================================

// Importer streams a delimited dataset export into its collection.
type Importer struct {
	db          *mongo.Database
	collections config.RecordFiles
	batchSize   int
	logger      logrus.FieldLogger
}

// NewImporter builds an importer writing to db. A batch size below one
// uses DefaultBatchSize.
func NewImporter(db *mongo.Database, collections config.RecordFiles, batchSize int, logger logrus.FieldLogger) *Importer {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Importer{
		db:          db,
		collections: collections,
		batchSize:   batchSize,
		logger:      logger,
	}
}

// Import reads r as the dataset's export and inserts every decodable row.
//
// PARAMETERS:
//   - dataset: which collection receives the rows
//   - r: the delimited export, header first
//   - settings: delimiter and header layout of r
//   - replace: drop the collection before inserting
//
// RETURNS:
//   - counts of rows read, inserted and skipped
//   - the first read, validation or insert error
func (im *Importer) Import(ctx context.Context, dataset Dataset, r io.Reader, settings config.CSVSettings, replace bool) (ImportStats, error) {
	stats := ImportStats{Dataset: dataset}
	collection := im.db.Collection(dataset.Pick(im.collections))

	parser, err := csvparser.NewStreamingParser(r, settings)
	if err != nil {
		return stats, err
	}
	if err := validation.RequireColumns(string(dataset), parser.Headers(), dataset.Columns()...); err != nil {
		return stats, err
	}

	if replace {
		if err := collection.Drop(ctx); err != nil {
			return stats, fmt.Errorf("failed to drop %s: %w", collection.Name(), err)
		}
		im.logger.Infof("dropped collection %s", collection.Name())
	}

	batch := make([]interface{}, 0, im.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		result, err := collection.InsertMany(ctx, batch)
		if err != nil {
			return fmt.Errorf("failed to insert into %s: %w", collection.Name(), err)
		}
		stats.Inserted += len(result.InsertedIDs)
		batch = batch[:0]
		return nil
	}

	for parser.Next() {
		stats.Rows++

		doc, err := rowDocument(dataset, parser.Row())
		if err != nil {
			stats.Skipped++
			im.logger.Warnf("%s row %d skipped: %v", dataset, parser.RowNumber(), err)
			continue
		}

		batch = append(batch, doc)
		if len(batch) >= im.batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}
	if err := parser.Err(); err != nil {
		return stats, err
	}
	if err := flush(); err != nil {
		return stats, err
	}

	im.logger.Infof("imported %d of %d %s rows into %s", stats.Inserted, stats.Rows, dataset, collection.Name())
	return stats, nil
}

// rowDocument decodes one export row into the stored document shape.
func rowDocument(dataset Dataset, row map[string]string) (bson.D, error) {
	switch dataset {
	case DatasetLegals:
		legal, err := DecodeLegalRow(row)
		if err != nil {
			return nil, err
		}
		return LegalDocument(legal), nil
	case DatasetParties:
		party, err := DecodePartyRow(row)
		if err != nil {
			return nil, err
		}
		return PartyDocument(party), nil
	case DatasetMasters:
		master, _, err := DecodeMasterRow(row)
		if err != nil {
			return nil, err
		}
		return MasterDocument(master), nil
	}
	return nil, fmt.Errorf("unknown dataset %q", dataset)
}

// =============================================================================
// DOCUMENT BUILDERS
// =============================================================================

// LegalDocument is the stored form of a legal record.
func LegalDocument(legal types.LegalRecord) bson.D {
	return bson.D{
		{Key: fieldDocumentID, Value: legal.DocumentID},
		{Key: fieldBlock, Value: legal.Block},
		{Key: fieldLot, Value: legal.Lot},
		{Key: fieldUnit, Value: legal.Unit},
	}
}

// PartyDocument is the stored form of a party record.
func PartyDocument(party types.PartyRecord) bson.D {
	return bson.D{
		{Key: fieldDocumentID, Value: party.DocumentID},
		{Key: fieldRecordType, Value: party.RecordType},
		{Key: fieldPartyType, Value: party.PartyType},
		{Key: fieldName, Value: party.Name},
	}
}

// MasterDocument is the stored form of a master record. Absent dates and
// amounts are left out of the document.
func MasterDocument(master types.MasterRecord) bson.D {
	doc := bson.D{{Key: fieldDocumentID, Value: master.DocumentID}}
	if master.HasDate() {
		doc = append(doc, bson.E{Key: fieldRecordedDate, Value: master.RecordedDate})
	}
	if master.Amount != nil {
		doc = append(doc, bson.E{Key: fieldDoc, Value: bson.D{{Key: fieldAmount, Value: master.Amount.InexactFloat64()}}})
	}
	return doc
}
