package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"salesinsights/internal/export/domain"
	warehouse "salesinsights/internal/warehouse/domain"
)

// parquetParallelism nombre de goroutines d'encodage du writer Parquet
const parquetParallelism = 4

// ParquetSink écrit les faits dans un fichier Parquet compressé (Snappy)
type ParquetSink struct {
	path   string
	file   source.ParquetFile
	writer *writer.ParquetWriter
	rows   int64
}

// NewParquetSink crée (ou écrase) le fichier
func NewParquetSink(path string) (*ParquetSink, error) {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return nil, fmt.Errorf("create parquet: %w", err)
	}

	pw, err := writer.NewParquetWriter(fw, new(domain.FactParquet), parquetParallelism)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("parquet writer: %w", err)
	}
	pw.RowGroupSize = 128 * 1024 * 1024
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	return &ParquetSink{path: path, file: fw, writer: pw}, nil
}

// WriteBatch écrit les lignes du lot
func (s *ParquetSink) WriteBatch(ctx context.Context, batch warehouse.FactBatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, f := range batch.Rows {
		if err := s.writer.Write(domain.NewFactParquet(f)); err != nil {
			return fmt.Errorf("write parquet row %d: %w", f.ID, err)
		}
	}
	s.rows += int64(len(batch.Rows))
	return nil
}

// Rows retourne le nombre de lignes écrites
func (s *ParquetSink) Rows() int64 {
	return s.rows
}

// Path retourne le chemin du fichier
func (s *ParquetSink) Path() string {
	return s.path
}

// Close termine le fichier (footer) et le ferme
func (s *ParquetSink) Close() error {
	return errors.Join(s.writer.WriteStop(), s.file.Close())
}
