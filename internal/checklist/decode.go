package checklist

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/birdwell/trading-cards/internal/domain"
	"github.com/birdwell/trading-cards/internal/normalize"
)

// Format is a supported checklist file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ErrUnsupportedFormat is returned for file extensions the importer cannot read.
var ErrUnsupportedFormat = errors.New("unsupported checklist format")

// header aliases, matched case-insensitively after trimming; spaces and
// dashes count as underscores.
var (
	headerSeparators = strings.NewReplacer(" ", "_", "-", "_")

	numberHeaders = []string{"card_number", "cardnumber", "number", "no", "#"}
	playerHeaders = []string{"player_name", "playername", "player", "name"}
	typeHeaders   = []string{"card_type", "cardtype", "type", "subset"}
)

// FormatOf returns the format implied by a file name's extension.
func FormatOf(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
}

// Decode reads checklist rows in the given format.
func Decode(format Format, r io.Reader) ([]domain.ChecklistRow, error) {
	switch format {
	case FormatCSV:
		return DecodeCSV(r)
	case FormatJSON:
		return DecodeJSON(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// DecodeCSV reads a CSV checklist. The first record is a header naming the
// card number, player and card type columns; other columns are ignored.
func DecodeCSV(r io.Reader) ([]domain.ChecklistRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return []domain.ChecklistRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	numberCol := column(header, numberHeaders)
	playerCol := column(header, playerHeaders)
	typeCol := column(header, typeHeaders)
	if numberCol < 0 || playerCol < 0 || typeCol < 0 {
		return nil, fmt.Errorf("csv header %q must name card number, player and card type columns", header)
	}

	rows := []domain.ChecklistRow{}
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		number, err := strconv.Atoi(strings.TrimSpace(field(record, numberCol)))
		if err != nil {
			return nil, fmt.Errorf("csv line %d: card number %q is not an integer", line, field(record, numberCol))
		}
		rows = append(rows, domain.ChecklistRow{
			CardNumber: number,
			PlayerName: normalize.Text(field(record, playerCol)),
			CardType:   normalize.Text(field(record, typeCol)),
		})
	}
	return rows, nil
}

// DecodeJSON reads a JSON array of {cardNumber, playerName, cardType} objects.
func DecodeJSON(r io.Reader) ([]domain.ChecklistRow, error) {
	var rows []domain.ChecklistRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode json checklist: %w", err)
	}
	for i := range rows {
		rows[i].PlayerName = normalize.Text(rows[i].PlayerName)
		rows[i].CardType = normalize.Text(rows[i].CardType)
	}
	if rows == nil {
		rows = []domain.ChecklistRow{}
	}
	return rows, nil
}

func column(header []string, aliases []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		h = headerSeparators.Replace(h)
		for _, a := range aliases {
			if h == a {
				return i
			}
		}
	}
	return -1
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return record[i]
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
