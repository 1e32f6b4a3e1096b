// =============================================================================
// File Processing Engine - Record Parser Module
// =============================================================================
//
// This module turns one line of an input file into a typed record. The line
// format is positional and comma separated; the first field selects the kind:
//
//   001,<document>,<name>,<business area>      -> Client
//   002,<document>,<name>,<salary>             -> Seller
//   003,<sale id>,[<item>;<item>;...],<seller> -> SaleBatch
//
// Each item inside the brackets is formatted "itemId-quantity-price".
//
// RESULT MODEL:
//   ParseLine returns a Record whose Kind says what was found. An unknown or
//   non-numeric code yields KindUnrecognized with a nil error: the caller skips
//   the line. A structurally broken SaleBatch yields a *MalformedRecordError,
//   which aborts the whole file.
//
// =============================================================================

package recordparser

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECORD KINDS
// =============================================================================

// Kind identifies the type of a parsed line.
type Kind int

const (
	// KindUnrecognized marks a line whose code is unknown. It is skipped.
	KindUnrecognized Kind = iota

	// KindClient marks a client line (code 1).
	KindClient

	// KindSeller marks a seller line (code 2).
	KindSeller

	// KindSaleBatch marks a sale line (code 3).
	KindSaleBatch
)

// Record codes as they appear in the first field. They are plain decimal
// numbers; "001" and "1" are the same code.
const (
	CodeClient    = 1
	CodeSeller    = 2
	CodeSaleBatch = 3
)

// String returns a lowercase name for the kind, used in logs.
func (k Kind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindSeller:
		return "seller"
	case KindSaleBatch:
		return "sale"
	default:
		return "unrecognized"
	}
}

// =============================================================================
// RECORD STRUCTURES
// =============================================================================

// Record is the result of parsing a single line.
// Client and seller records carry no payload; only their occurrence counts.
type Record struct {
	// Kind is the record type selected by the leading code.
	Kind Kind

	// Sale is set only when Kind is KindSaleBatch.
	Sale *SaleBatch
}

// SaleBatch is one sale line: a sale id, its items, and the seller.
type SaleBatch struct {
	// SaleID is the second field of the line.
	SaleID string

	// Items are the bracketed entries, in line order.
	Items []ItemEntry

	// SellerName is the fourth field of the line.
	SellerName string
}

// ItemEntry is a single "itemId-quantity-price" entry.
type ItemEntry struct {
	ItemID    string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrMalformedRecord is the sentinel matched by errors.Is for any line that
// fails structural or numeric parsing.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError describes why a line could not be parsed.
type MalformedRecordError struct {
	// Line is the 1-based line number, when known. Zero means unknown.
	Line int

	// Text is the offending line.
	Text string

	// Reason is a short human-readable explanation.
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed record at line %d: %s: %q", e.Line, e.Reason, e.Text)
	}
	return fmt.Sprintf("malformed record: %s: %q", e.Reason, e.Text)
}

// Unwrap lets errors.Is(err, ErrMalformedRecord) succeed.
func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

const (
	fieldSeparator = ","
	itemSeparator  = ";"
	partSeparator  = "-"

	// saleFieldCount is the minimum number of fields on a sale line.
	saleFieldCount = 4
)

// ParseLine parses one line into a Record.
//
// PARAMETERS:
//   - line: The raw text of the line, without its line terminator.
//
// RETURNS:
//   - The parsed Record. Kind is KindUnrecognized for lines to be skipped.
//   - A *MalformedRecordError if the line is a sale that cannot be parsed.
func ParseLine(line string) (Record, error) {
	fields := strings.Split(line, fieldSeparator)

	code, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		// Non-numeric first field (including blank lines).
		return Record{Kind: KindUnrecognized}, nil
	}

	switch code {
	case CodeClient:
		return Record{Kind: KindClient}, nil

	case CodeSeller:
		return Record{Kind: KindSeller}, nil

	case CodeSaleBatch:
		sale, err := parseSale(fields)
		if err != nil {
			var me *MalformedRecordError
			if errors.As(err, &me) {
				me.Text = line
			}
			return Record{}, err
		}
		return Record{Kind: KindSaleBatch, Sale: sale}, nil

	default:
		return Record{Kind: KindUnrecognized}, nil
	}
}

// parseSale builds a SaleBatch from the already split fields of a sale line.
func parseSale(fields []string) (*SaleBatch, error) {
	if len(fields) < saleFieldCount {
		return nil, &MalformedRecordError{
			Reason: fmt.Sprintf("sale line has %d fields, want %d", len(fields), saleFieldCount),
		}
	}

	items, err := parseItems(fields[2])
	if err != nil {
		return nil, err
	}

	return &SaleBatch{
		SaleID:     strings.TrimSpace(fields[1]),
		Items:      items,
		SellerName: strings.TrimSpace(fields[3]),
	}, nil
}

// parseItems parses the bracketed item list, e.g. "[1-10-100;2-30-2.50]".
// An empty list "[]" yields no items. The quantities of one list must sum
// to a value that fits in an int64.
func parseItems(list string) ([]ItemEntry, error) {
	list = strings.TrimSpace(list)
	list = strings.TrimPrefix(list, "[")
	list = strings.TrimSuffix(list, "]")

	if strings.TrimSpace(list) == "" {
		return nil, nil
	}

	entries := strings.Split(list, itemSeparator)
	items := make([]ItemEntry, 0, len(entries))

	var total int64
	for _, entry := range entries {
		item, err := parseItem(entry)
		if err != nil {
			return nil, err
		}
		if item.Quantity > math.MaxInt64-total {
			return nil, &MalformedRecordError{
				Reason: fmt.Sprintf("item %q overflows the item count of the sale", entry),
			}
		}
		total += item.Quantity
		items = append(items, item)
	}

	return items, nil
}

// parseItem parses a single "itemId-quantity-price" entry.
func parseItem(entry string) (ItemEntry, error) {
	parts := strings.Split(strings.TrimSpace(entry), partSeparator)
	if len(parts) != 3 {
		return ItemEntry{}, &MalformedRecordError{
			Reason: fmt.Sprintf("item %q has %d parts, want 3", entry, len(parts)),
		}
	}

	quantity, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil || quantity < 0 {
		return ItemEntry{}, &MalformedRecordError{
			Reason: fmt.Sprintf("item %q has invalid quantity %q", entry, parts[1]),
		}
	}

	// The last price of the list may still carry the closing bracket.
	rawPrice := strings.TrimSuffix(strings.TrimSpace(parts[2]), "]")
	price, err := decimal.NewFromString(rawPrice)
	if err != nil || price.IsNegative() {
		return ItemEntry{}, &MalformedRecordError{
			Reason: fmt.Sprintf("item %q has invalid price %q", entry, parts[2]),
		}
	}

	return ItemEntry{
		ItemID:    strings.TrimSpace(parts[0]),
		Quantity:  quantity,
		UnitPrice: price,
	}, nil
}
