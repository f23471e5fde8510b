package accesslog

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const timeLayout = "2006-01-02T15:04:05Z"

var recordFields = []string{"client", "time", "method", "path", "version", "status", "length"}

type Record struct {
	Client  string
	Time    time.Time
	Method  string
	Path    string
	Version string
	Status  int
	Length  int64
}

// String renders the record as a single access-log line:
//
//	client timestamp "METHOD path VERSION" status length
func (r Record) String() string {
	return fmt.Sprintf("%s %s \"%s %s %s\" %d %d",
		r.Client, r.Time.UTC().Format(timeLayout), r.Method, r.Path, r.Version, r.Status, r.Length)
}

type Logger struct {
	logger zerolog.Logger
	closer io.Closer
}

// New logs records to w as plain access-log lines, one per record. Writes
// are serialized, so w may be shared by concurrent workers.
func New(w io.Writer) *Logger {
	out := zerolog.ConsoleWriter{
		Out:           zerolog.SyncWriter(w),
		NoColor:       true,
		PartsOrder:    []string{zerolog.MessageFieldName},
		FieldsExclude: recordFields,
	}
	return &Logger{
		logger: zerolog.New(out),
	}
}

func Discard() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// Open appends records to the file at path, creating it if needed.
func Open(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening access log: %w", err)
	}
	l := New(f)
	l.closer = f
	return l, nil
}

func (l *Logger) Log(r Record) {
	l.logger.Log().
		Str("client", r.Client).
		Str("time", r.Time.UTC().Format(timeLayout)).
		Str("method", r.Method).
		Str("path", r.Path).
		Str("version", r.Version).
		Int("status", r.Status).
		Int64("length", r.Length).
		Msg(r.String())
}

func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
