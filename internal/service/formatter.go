package service

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // Asia/Kolkata must resolve on minimal images.

	"github.com/vietanh2810/registration-api/internal/config"
	"github.com/vietanh2810/registration-api/internal/domain"
)

// Column keys understood by the row formatter.
const (
	ColName          = "name"
	ColRollNumber    = "rollNumber"
	ColProgram       = "program"
	ColSemester      = "semester"
	ColMobileNumber  = "mobileNumber"
	ColCollege       = "college"
	ColEmail         = "email"
	ColEvent         = "event"
	ColTeamType      = "teamType"
	ColTeamName      = "teamName"
	ColTeamMembers   = "teamMembers"
	ColReceiptURL    = "receiptUrl"
	ColUpiID         = "upiId"
	ColTransactionID = "transactionId"
	ColWhatsappLink  = "whatsappLink"
	ColTimestamp     = "timestamp"
)

// en-IN renders date and time as "28/11/2025, 9:05:03 am".
const timestampLayout = "2/1/2006, 3:04:05 pm"

type Column struct {
	Key     string
	Default string
}

// Schema is the destination layout of the ledger: the range rows are
// appended to and the ordered columns of each row.
type Schema struct {
	Name    string
	Range   string
	Columns []Column
}

func cols(keys ...string) []Column {
	out := make([]Column, 0, len(keys))
	for _, key := range keys {
		c := Column{Key: key, Default: Placeholder}
		if key == ColTeamType {
			c.Default = "Individual"
		}
		out = append(out, c)
	}

	return out
}

// Schemas holds the sheet layouts used by past and current forms.
var Schemas = map[string]Schema{
	"basic": {
		Name:  "basic",
		Range: "Sheet1!A:J",
		Columns: cols(ColName, ColRollNumber, ColProgram, ColSemester, ColMobileNumber, ColCollege,
			ColEvent, ColUpiID, ColTransactionID, ColTimestamp),
	},
	"receipt": {
		Name:  "receipt",
		Range: "Sheet1!A:K",
		Columns: cols(ColName, ColRollNumber, ColProgram, ColSemester, ColMobileNumber, ColCollege,
			ColEvent, ColReceiptURL, ColUpiID, ColTransactionID, ColTimestamp),
	},
	"team": {
		Name:  "team",
		Range: "Submissions!B:O",
		Columns: cols(ColName, ColRollNumber, ColProgram, ColSemester, ColMobileNumber, ColCollege,
			ColEvent, ColTeamType, ColTeamName, ColTeamMembers, ColReceiptURL, ColUpiID, ColTransactionID, ColTimestamp),
	},
	"team-email": {
		Name:  "team-email",
		Range: "Submissions!B:P",
		Columns: cols(ColName, ColRollNumber, ColProgram, ColSemester, ColMobileNumber, ColEmail, ColCollege,
			ColEvent, ColTeamType, ColTeamName, ColTeamMembers, ColReceiptURL, ColUpiID, ColTransactionID, ColTimestamp),
	},
}

var knownColumns = map[string]bool{
	ColName: true, ColRollNumber: true, ColProgram: true, ColSemester: true, ColMobileNumber: true,
	ColCollege: true, ColEmail: true, ColEvent: true, ColTeamType: true, ColTeamName: true,
	ColTeamMembers: true, ColReceiptURL: true, ColUpiID: true, ColTransactionID: true,
	ColWhatsappLink: true, ColTimestamp: true,
}

// SchemaFromConfig picks the named schema and applies the range and column
// overrides of conf.
func SchemaFromConfig(conf *config.LedgerConfig) (Schema, error) {
	name := conf.Schema
	if name == "" {
		name = "team"
	}

	schema, ok := Schemas[name]
	if !ok && len(conf.Columns) == 0 {
		return Schema{}, fmt.Errorf("unknown ledger schema %q", name)
	}
	schema.Name = name

	if len(conf.Columns) > 0 {
		schema.Columns = make([]Column, 0, len(conf.Columns))
		for _, c := range conf.Columns {
			if !knownColumns[c.Key] {
				return Schema{}, fmt.Errorf("unknown ledger column %q", c.Key)
			}
			col := cols(c.Key)[0]
			if c.Default != "" {
				col.Default = c.Default
			}
			schema.Columns = append(schema.Columns, col)
		}
	}

	if conf.Range != "" {
		schema.Range = conf.Range
	}
	if schema.Range == "" {
		return Schema{}, fmt.Errorf("ledger schema %q has no range", name)
	}

	return schema, nil
}

type RowFormatter struct {
	schema Schema
	loc    *time.Location
	now    func() time.Time
}

type FormatterOption func(*RowFormatter)

// WithClock replaces time.Now as the source of the timestamp column.
func WithClock(now func() time.Time) FormatterOption {
	return func(f *RowFormatter) {
		f.now = now
	}
}

func NewRowFormatter(schema Schema, timezone string, opts ...FormatterOption) (*RowFormatter, error) {
	if timezone == "" {
		timezone = "Asia/Kolkata"
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("time.LoadLocation(%v) -> %w", timezone, err)
	}

	f := &RowFormatter{
		schema: schema,
		loc:    loc,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *RowFormatter) Schema() Schema {
	return f.schema
}

// Format flattens a submission into the cells of the configured schema.
// Blank values fall back to the column default.
func (f *RowFormatter) Format(sub domain.Submission, members []domain.TeamMember, receiptURL string) domain.LedgerRow {
	values := map[string]string{
		ColName:          sub.Name,
		ColRollNumber:    sub.RollNumber,
		ColProgram:       sub.Program,
		ColSemester:      sub.Semester,
		ColMobileNumber:  sub.MobileNumber,
		ColCollege:       sub.College,
		ColEmail:         sub.Email,
		ColEvent:         sub.EventLabel(),
		ColTeamType:      sub.TeamType,
		ColTeamName:      sub.TeamName,
		ColTeamMembers:   FormatTeamMembers(members),
		ColReceiptURL:    receiptURL,
		ColUpiID:         sub.UpiID,
		ColTransactionID: sub.TransactionID,
		ColWhatsappLink:  sub.WhatsappLink,
		ColTimestamp:     f.now().In(f.loc).Format(timestampLayout),
	}

	cells := make([]string, 0, len(f.schema.Columns))
	for _, col := range f.schema.Columns {
		v := values[col.Key]
		if strings.TrimSpace(v) == "" {
			v = col.Default
		}
		cells = append(cells, v)
	}

	return domain.LedgerRow{
		Key:   sub.TransactionID,
		Cells: cells,
	}
}
