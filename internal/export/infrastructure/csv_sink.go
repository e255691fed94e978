package infrastructure

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	warehouse "salesinsights/internal/warehouse/domain"
)

// CSVSink écrit les faits dans un fichier CSV, lot par lot.
// L'en-tête est écrit à l'ouverture.
type CSVSink struct {
	file   *os.File
	buf    *bufio.Writer
	writer *csv.Writer
	rows   int64
}

// NewCSVSink crée (ou écrase) le fichier
func NewCSVSink(path string) (*CSVSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv: %w", err)
	}

	buf := bufio.NewWriterSize(file, 1024*1024)
	s := &CSVSink{file: file, buf: buf, writer: csv.NewWriter(buf)}
	if err := s.writer.Write(warehouse.FactCSVHeaders()); err != nil {
		file.Close()
		return nil, err
	}
	return s, nil
}

// WriteBatch écrit les lignes du lot
func (s *CSVSink) WriteBatch(ctx context.Context, batch warehouse.FactBatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, f := range batch.Rows {
		if err := s.writer.Write(f.Record()); err != nil {
			return fmt.Errorf("write csv row %d: %w", f.ID, err)
		}
	}
	s.writer.Flush()
	s.rows += int64(len(batch.Rows))
	return s.writer.Error()
}

// Rows retourne le nombre de lignes écrites
func (s *CSVSink) Rows() int64 {
	return s.rows
}

// Path retourne le chemin du fichier
func (s *CSVSink) Path() string {
	return s.file.Name()
}

// Close vide les buffers et ferme le fichier
func (s *CSVSink) Close() error {
	s.writer.Flush()
	return errors.Join(s.writer.Error(), s.buf.Flush(), s.file.Close())
}
