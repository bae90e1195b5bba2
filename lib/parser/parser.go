package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ValentinKolb/tsched/lib/model"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/pkg/errors"
)

var Logger = logger.GetLogger("parser")

// operationPattern matches one operation token, e.g. r1(A), w12(X), c3 or c
var operationPattern = regexp.MustCompile(`([A-Za-z])(\d*)(?:\(([^)]*)\))?`)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Error is a parse error bound to a line of the input (0 if unknown).
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func newError(line int, format string, args ...interface{}) *Error {
	return &Error{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Format is the encoding of an input document.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

// ParseFormat converts a format name into a Format. The empty string maps to FormatAuto.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatText, "txt":
		return FormatText, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid input format %q (expected auto, text or yaml)", s)
	}
}

// DetectFormat returns FormatYAML for .yaml / .yml files and FormatText otherwise.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// Input is a fully parsed input document.
type Input struct {
	DataItems    []string
	Transactions []model.Transaction
	Plans        []model.SchedulePlan
}

// Registries creates fresh registries for the data items and transactions of the input.
// Every call returns new registries, so each caller can own its own copy.
func (in *Input) Registries() (*model.DataRegistry, *model.TransactionRegistry) {
	return model.NewDataRegistry(in.DataItems...), model.NewTransactionRegistry(in.Transactions...)
}

// --------------------------------------------------------------------------
// Entry Points
// --------------------------------------------------------------------------

// ParseFile reads and parses the input document at path.
// With FormatAuto the format is chosen by DetectFormat.
func ParseFile(path string, format Format) (*Input, error) {
	Logger.Debugf("parsing input data from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read input file %s", path)
	}

	if format == FormatAuto || format == "" {
		format = DetectFormat(path)
	}

	in, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return in, nil
}

// Parse parses data in the given format. FormatAuto is treated as FormatText.
func Parse(data []byte, format Format) (*Input, error) {
	var (
		in  *Input
		err error
	)
	switch format {
	case FormatYAML:
		in, err = ParseYAML(data)
	case FormatText, FormatAuto, "":
		in, err = ParseReader(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("invalid input format %q", format)
	}
	if err != nil {
		return nil, err
	}

	Logger.Infof("input parsed: %d data items, %d transactions and %d schedule plans",
		len(in.DataItems), len(in.Transactions), len(in.Plans))
	return in, nil
}

// ParseReader parses a text document.
func ParseReader(r io.Reader) (*Input, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNumber := 0
	next := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		lineNumber++
		return scanner.Text(), true
	}

	itemsLine, ok := next()
	if !ok {
		if err := scanner.Err(); err != nil {
			return nil, errors.Wrap(err, "failed to read input")
		}
		return nil, newError(1, "input is empty")
	}
	items, err := ParseDataItems(itemsLine)
	if err != nil {
		return nil, err
	}

	txLine, ok := next()
	if !ok {
		return nil, newError(2, "no transaction records found")
	}
	tsLine, ok := next()
	if !ok {
		return nil, newError(3, "no timestamps found")
	}
	txs, err := ParseTransactions(txLine, tsLine)
	if err != nil {
		return nil, err
	}

	in := &Input{DataItems: items, Transactions: txs}
	for {
		line, ok := next()
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			Logger.Debugf("skipping empty line %d", lineNumber)
			continue
		}

		plan, err := ParseSchedulePlan(line, lineNumber)
		if err != nil {
			return nil, err
		}
		in.Plans = append(in.Plans, plan)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read input after line %d", lineNumber)
	}

	return in, nil
}

// --------------------------------------------------------------------------
// Line Parsers
// --------------------------------------------------------------------------

// splitList splits a comma separated list, dropping a trailing ';' and empty entries.
func splitList(line string) []string {
	parts := strings.Split(strings.TrimSuffix(strings.TrimSpace(line), ";"), ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}

// ParseDataItems parses the data item line ("A, B, C;").
func ParseDataItems(line string) ([]string, error) {
	items := splitList(line)
	if len(items) == 0 {
		return nil, newError(1, "no data records found")
	}
	return items, nil
}

// ParseTransactions parses the transaction id line and the timestamp line.
// Transaction ids are upper cased so that "t1" and the operation r1(..) both refer to T1.
func ParseTransactions(txLine, tsLine string) ([]model.Transaction, error) {
	ids := splitList(txLine)
	if len(ids) == 0 {
		return nil, newError(2, "no transaction records found")
	}
	stamps := splitList(tsLine)
	if len(stamps) == 0 {
		return nil, newError(3, "no timestamps found")
	}
	if len(ids) != len(stamps) {
		return nil, newError(2, "transaction and timestamp counts do not match (%d ids, %d timestamps)", len(ids), len(stamps))
	}

	txs := make([]model.Transaction, len(ids))
	for i := range ids {
		ts, err := strconv.ParseUint(stamps[i], 10, 32)
		if err != nil {
			return nil, newError(3, "failed to parse transaction records: timestamp %q of %s: %v", stamps[i], ids[i], err)
		}
		txs[i] = model.Transaction{ID: strings.ToUpper(ids[i]), Ts: uint32(ts)}
	}
	return txs, nil
}

// ParseSchedulePlan parses a plan line ("S1 - r1(A) w2(B) c1").
// lineNumber is only used for error messages.
func ParseSchedulePlan(line string, lineNumber int) (model.SchedulePlan, error) {
	id, ops, found := strings.Cut(line, "-")
	id = strings.TrimSpace(id)
	if !found || id == "" {
		return model.SchedulePlan{}, newError(lineNumber, "invalid schedule plan format, expected 'ScheduleId - Operations'")
	}

	operations, err := ParseOperations(ops)
	if err != nil {
		return model.SchedulePlan{}, newError(lineNumber, "schedule %s: %v", id, err)
	}
	if len(operations) == 0 {
		return model.SchedulePlan{}, newError(lineNumber, "no operations found in schedule plan %s", id)
	}

	return model.SchedulePlan{ID: id, Operations: operations}, nil
}

// ParseOperations tokenizes an operation string ("r1(A) w2(B) c1").
func ParseOperations(s string) ([]model.Operation, error) {
	matches := operationPattern.FindAllStringSubmatch(s, -1)
	operations := make([]model.Operation, 0, len(matches))

	for _, m := range matches {
		opType, err := model.ParseOperationType(m[1])
		if err != nil {
			return nil, fmt.Errorf("token %q: %w", m[0], err)
		}

		txID := ""
		if m[2] != "" {
			txID = "T" + m[2]
		}
		dataID := strings.TrimSpace(m[3])

		if opType != model.OpCommit {
			if txID == "" {
				return nil, fmt.Errorf("token %q: %s operation without transaction", m[0], opType)
			}
			if dataID == "" {
				return nil, fmt.Errorf("token %q: %s operation without data item", m[0], opType)
			}
		}
		operations = append(operations, model.Operation{Type: opType, TransactionID: txID, DataID: dataID})
	}
	return operations, nil
}
