package sink

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/pkg/errors"
)

var Logger = logger.GetLogger("sink")

// VerdictFile is the name of the verdict file inside the output directory.
const VerdictFile = "out.txt"

type dirSink struct {
	dir    string
	file   *os.File
	out    *bufio.Writer
	closed bool
}

// NewDirSink creates dir if it is missing and creates (or truncates) the
// verdict file inside it.
func NewDirSink(dir string) (ISink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", dir)
	}

	path := filepath.Join(dir, VerdictFile)
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create verdict file %s", path)
	}

	Logger.Debugf("writing results to %s", dir)
	return &dirSink{dir: dir, file: f, out: bufio.NewWriter(f)}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see sink.ISink)
// --------------------------------------------------------------------------

func (s *dirSink) WriteVerdict(line string) error {
	if s.closed {
		return fmt.Errorf("sink is closed")
	}
	if _, err := s.out.WriteString(line + "\n"); err != nil {
		return errors.Wrapf(err, "failed to write verdict %q", line)
	}
	return nil
}

func (s *dirSink) WriteAudit(itemID string, records []string) error {
	if s.closed {
		return fmt.Errorf("sink is closed")
	}
	if itemID == "" || strings.ContainsAny(itemID, `/\`) || itemID == "." || itemID == ".." {
		return fmt.Errorf("data item id %q cannot be used as file name", itemID)
	}
	if strings.EqualFold(itemID+".txt", VerdictFile) {
		return fmt.Errorf("audit trail of data item %q would overwrite the verdict file %s", itemID, VerdictFile)
	}

	var b strings.Builder
	for _, r := range records {
		b.WriteString(r)
		b.WriteByte('\n')
	}

	path := filepath.Join(s.dir, itemID+".txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write audit file %s", path)
	}
	Logger.Debugf("wrote %d audit records to %s", len(records), path)
	return nil
}

func (s *dirSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	flushErr := s.out.Flush()
	closeErr := s.file.Close()
	if flushErr != nil {
		return errors.Wrapf(flushErr, "failed to flush %s", s.file.Name())
	}
	if closeErr != nil {
		return errors.Wrapf(closeErr, "failed to close %s", s.file.Name())
	}
	return nil
}
