// =============================================================================
// ACRIS Unit Report - MongoDB Record Source
// =============================================================================
//
// The datasets are also kept in a MongoDB database, one collection per
// dataset, with the export's column names as field names:
//
//   legals:  { "DOCUMENT ID", "BLOCK", "LOT", "UNIT" }
//   parties: { "DOCUMENT ID", "RECORD TYPE", "PARTY TYPE", "NAME" }
//   masters: { "DOCUMENT ID", "RECORDED / FILED", "DOC": { " AMOUNT" } }
//
// The nested "DOC"." AMOUNT" path comes from importing the "DOC. AMOUNT"
// column with a dotted-path importer. The Importer in this package writes
// the same layout so both paths read back the same way.
//
// =============================================================================

package records

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ginjaninja78/acris-unit-report/internal/config"
	"github.com/ginjaninja78/acris-unit-report/internal/types"
)

// Field names in the document store.
const (
	fieldDocumentID   = "DOCUMENT ID"
	fieldBlock        = "BLOCK"
	fieldLot          = "LOT"
	fieldUnit         = "UNIT"
	fieldRecordType   = "RECORD TYPE"
	fieldPartyType    = "PARTY TYPE"
	fieldName         = "NAME"
	fieldRecordedDate = "RECORDED / FILED"
	fieldDoc          = "DOC"
	fieldAmount       = " AMOUNT"
)

// =============================================================================
// DOCUMENT SHAPES
// =============================================================================

// Ids, block, lot and party type are kept raw as well: hand-imported
// collections hold them as strings or doubles.
type mongoLegal struct {
	DocumentID bson.RawValue `bson:"DOCUMENT ID"`
	Block      bson.RawValue `bson:"BLOCK"`
	Lot        bson.RawValue `bson:"LOT"`
	Unit       bson.RawValue `bson:"UNIT"`
}

type mongoParty struct {
	DocumentID bson.RawValue `bson:"DOCUMENT ID"`
	RecordType string        `bson:"RECORD TYPE"`
	PartyType  bson.RawValue `bson:"PARTY TYPE"`
	Name       string        `bson:"NAME"`
}

// mongoMaster keeps date and amount raw: older imports stored them as
// strings, newer ones as dates and numbers.
type mongoMaster struct {
	DocumentID   bson.RawValue `bson:"DOCUMENT ID"`
	RecordedDate bson.RawValue `bson:"RECORDED / FILED"`
	Doc          struct {
		Amount bson.RawValue `bson:" AMOUNT"`
	} `bson:"DOC"`
}

func (m mongoLegal) record() (types.LegalRecord, error) {
	var legal types.LegalRecord
	var err error

	if legal.DocumentID, err = intFromRaw(fieldDocumentID, m.DocumentID); err != nil {
		return legal, err
	}
	if legal.Block, err = intFromRaw(fieldBlock, m.Block); err != nil {
		return legal, err
	}
	if legal.Lot, err = intFromRaw(fieldLot, m.Lot); err != nil {
		return legal, err
	}
	legal.Unit = stringFromRaw(m.Unit)

	return legal, nil
}

func (m mongoParty) record() (types.PartyRecord, error) {
	party := types.PartyRecord{RecordType: m.RecordType, Name: m.Name}

	id, err := intFromRaw(fieldDocumentID, m.DocumentID)
	if err != nil {
		return party, err
	}
	party.DocumentID = id

	// An empty party type reads as 0, like an empty CSV cell.
	if !isAbsent(m.PartyType) && stringFromRaw(m.PartyType) != "" {
		if party.PartyType, err = intFromRaw(fieldPartyType, m.PartyType); err != nil {
			return party, err
		}
	}

	return party, nil
}

// record returns an error only for an unreadable document id. Bad dates
// and amounts are dropped with a warning.
func (m mongoMaster) record() (types.MasterRecord, []string, error) {
	var master types.MasterRecord
	var warnings []string

	id, err := intFromRaw(fieldDocumentID, m.DocumentID)
	if err != nil {
		return master, nil, err
	}
	master.DocumentID = id

	date, err := dateFromRaw(m.RecordedDate)
	if err != nil {
		warnings = append(warnings, err.Error())
	}
	master.RecordedDate = date

	amount, err := amountFromRaw(m.Doc.Amount)
	if err != nil {
		warnings = append(warnings, err.Error())
	}
	master.Amount = amount

	return master, warnings, nil
}

func isAbsent(raw bson.RawValue) bool {
	return raw.Type == 0 || raw.Type == bsontype.Null || raw.Type == bsontype.Undefined
}

// intFromRaw reads an integer stored as int32, int64, a whole double or a
// numeric string.
func intFromRaw(field string, raw bson.RawValue) (int64, error) {
	switch raw.Type {
	case 0, bsontype.Null, bsontype.Undefined:
		return 0, fmt.Errorf("missing %s", field)
	case bsontype.Int32:
		return int64(raw.Int32()), nil
	case bsontype.Int64:
		return raw.Int64(), nil
	case bsontype.Double:
		f := raw.Double()
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("invalid %s %v", field, f)
		}
		return int64(f), nil
	case bsontype.String:
		return parseInt(map[string]string{field: raw.StringValue()}, field)
	default:
		return 0, fmt.Errorf("unsupported %s type %s", field, raw.Type)
	}
}

// stringFromRaw reads a string, formatting numbers the way they print.
// Other types read as empty.
func stringFromRaw(raw bson.RawValue) string {
	switch raw.Type {
	case bsontype.String:
		return strings.TrimSpace(raw.StringValue())
	case bsontype.Int32:
		return strconv.FormatInt(int64(raw.Int32()), 10)
	case bsontype.Int64:
		return strconv.FormatInt(raw.Int64(), 10)
	case bsontype.Double:
		return strconv.FormatFloat(raw.Double(), 'f', -1, 64)
	default:
		return ""
	}
}

// dateFromRaw reads a BSON datetime or a date string. Missing and null
// values are absent.
func dateFromRaw(raw bson.RawValue) (time.Time, error) {
	switch raw.Type {
	case 0, bsontype.Null, bsontype.Undefined:
		return time.Time{}, nil
	case bsontype.DateTime:
		return raw.Time().UTC(), nil
	case bsontype.String:
		return ParseDate(raw.StringValue())
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %s", raw.Type)
	}
}

// amountFromRaw reads any numeric BSON type or a numeric string. Missing
// and null values are absent.
func amountFromRaw(raw bson.RawValue) (*decimal.Decimal, error) {
	var amount decimal.Decimal

	switch raw.Type {
	case 0, bsontype.Null, bsontype.Undefined:
		return nil, nil
	case bsontype.Double:
		amount = decimal.NewFromFloat(raw.Double())
	case bsontype.Int32:
		amount = decimal.NewFromInt32(raw.Int32())
	case bsontype.Int64:
		amount = decimal.NewFromInt(raw.Int64())
	case bsontype.Decimal128:
		parsed, err := decimal.NewFromString(raw.Decimal128().String())
		if err != nil {
			return nil, fmt.Errorf("unrecognized amount %s", raw.Decimal128())
		}
		amount = parsed
	case bsontype.String:
		if raw.StringValue() == "" {
			return nil, nil
		}
		parsed, err := ParseAmount(raw.StringValue())
		if err != nil {
			return nil, err
		}
		amount = parsed
	default:
		return nil, fmt.Errorf("unsupported amount type %s", raw.Type)
	}

	return &amount, nil
}

// =============================================================================
// CONNECTION
// =============================================================================

// ConnectMongo connects to the document store and verifies the connection.
// The caller disconnects the returned client.
func ConnectMongo(ctx context.Context, settings config.MongoSettings) (*mongo.Client, error) {
	timeout := time.Duration(settings.TimeoutSeconds) * time.Second

	opts := options.Client().ApplyURI(settings.URI)
	if timeout > 0 {
		opts.SetConnectTimeout(timeout).SetServerSelectionTimeout(timeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", settings.URI, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach %s: %w", settings.URI, err)
	}

	return client, nil
}

// =============================================================================
// MONGO SOURCE
// =============================================================================

// MongoSource queries the three collections for one building.
type MongoSource struct {
	db          *mongo.Database
	collections config.RecordFiles
	timeout     time.Duration
	logger      logrus.FieldLogger
}

// NewMongoSource builds a source over db. A zero timeout leaves queries
// bounded only by ctx.
func NewMongoSource(db *mongo.Database, collections config.RecordFiles, timeout time.Duration, logger logrus.FieldLogger) *MongoSource {
	return &MongoSource{
		db:          db,
		collections: collections,
		timeout:     timeout,
		logger:      logger,
	}
}

// Load runs three queries: legals by block and lot, then parties and
// masters by the legals' document ids.
func (s *MongoSource) Load(ctx context.Context, filter types.Filter) (*Store, error) {
	legalDocs, err := findAll[mongoLegal](ctx, s, s.collections.Legals, LegalsQuery(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to query legals: %w", err)
	}

	legals := make([]types.LegalRecord, 0, len(legalDocs))
	for i, doc := range legalDocs {
		legal, err := doc.record()
		if err != nil {
			s.logger.Warnf("legals document %d skipped: %v", i, err)
			continue
		}
		legals = append(legals, legal)
	}

	byDocument := DocumentQuery(legals)

	partyDocs, err := findAll[mongoParty](ctx, s, s.collections.Parties, byDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to query parties: %w", err)
	}
	parties := make([]types.PartyRecord, 0, len(partyDocs))
	for i, doc := range partyDocs {
		party, err := doc.record()
		if err != nil {
			s.logger.Warnf("parties document %d skipped: %v", i, err)
			continue
		}
		parties = append(parties, party)
	}

	masterDocs, err := findAll[mongoMaster](ctx, s, s.collections.Masters, byDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to query masters: %w", err)
	}
	masters := make([]types.MasterRecord, 0, len(masterDocs))
	for i, doc := range masterDocs {
		master, warnings, err := doc.record()
		if err != nil {
			s.logger.Warnf("masters document %d skipped: %v", i, err)
			continue
		}
		for _, w := range warnings {
			s.logger.Debugf("master %d: %s", master.DocumentID, w)
		}
		masters = append(masters, master)
	}

	s.logger.Debugf("queried %d legals, %d parties, %d masters", len(legals), len(parties), len(masters))

	return NewStore(legals, parties, masters, filter), nil
}

// LegalsQuery selects the legal records of a building. Block and lot must
// be stored as numbers to match.
func LegalsQuery(filter types.Filter) bson.M {
	return bson.M{fieldBlock: filter.Block, fieldLot: filter.Lot}
}

// DocumentQuery selects records whose document id appears in legals. Each
// id is listed once.
func DocumentQuery(legals []types.LegalRecord) bson.M {
	seen := make(map[int64]bool, len(legals))
	ids := make([]int64, 0, len(legals))
	for _, legal := range legals {
		if !seen[legal.DocumentID] {
			seen[legal.DocumentID] = true
			ids = append(ids, legal.DocumentID)
		}
	}
	return bson.M{fieldDocumentID: bson.M{"$in": ids}}
}

func findAll[T any](ctx context.Context, s *MongoSource, collection string, filter bson.M) ([]T, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
