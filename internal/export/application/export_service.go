package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"salesinsights/internal/export/domain"
	"salesinsights/internal/export/infrastructure"
	warehouse "salesinsights/internal/warehouse/domain"
)

// Uploader publie un fichier sous une clé objet
type Uploader interface {
	Upload(ctx context.Context, key, path, contentType string) error
}

// Options configuration des exports d'un run
type Options struct {
	Dir     string
	Formats []domain.ExportFormat
	// Prefix préfixe des clés objet
	Prefix string
}

// fileSink sink fichier dont on connaît le chemin et le volume
type fileSink interface {
	warehouse.FactSink
	Path() string
	Rows() int64
}

// ExportService ouvre les sinks fichiers d'un run de génération
// puis publie les fichiers produits
type ExportService struct {
	opts     Options
	uploader Uploader
	logger   zerolog.Logger

	sinks []trackedSink
}

type trackedSink struct {
	format domain.ExportFormat
	sink   fileSink
}

// NewExportService crée le service; uploader peut être nil (pas de publication)
func NewExportService(opts Options, uploader Uploader, logger zerolog.Logger) *ExportService {
	return &ExportService{opts: opts, uploader: uploader, logger: logger}
}

// Sinks ouvre un sink par format demandé.
// En cas d'erreur, les sinks déjà ouverts sont fermés.
func (s *ExportService) Sinks() ([]warehouse.FactSink, error) {
	if len(s.opts.Formats) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(s.opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	out := make([]warehouse.FactSink, 0, len(s.opts.Formats))
	for _, format := range s.opts.Formats {
		path := filepath.Join(s.opts.Dir, domain.FileName(format))

		var (
			sink fileSink
			err  error
		)
		switch format {
		case domain.ExportFormatCSV:
			sink, err = infrastructure.NewCSVSink(path)
		case domain.ExportFormatParquet:
			sink, err = infrastructure.NewParquetSink(path)
		default:
			err = fmt.Errorf("%w: %q", domain.ErrInvalidFormat, format)
		}
		if err != nil {
			for _, opened := range out {
				opened.Close()
			}
			s.sinks = nil
			return nil, err
		}

		s.sinks = append(s.sinks, trackedSink{format: format, sink: sink})
		out = append(out, sink)
	}
	return out, nil
}

// Finish publie les fichiers produits (sinks déjà fermés par le run)
// et retourne les artefacts
func (s *ExportService) Finish(ctx context.Context, runID string) ([]domain.Artifact, error) {
	artifacts := make([]domain.Artifact, 0, len(s.sinks))
	var errs []error

	for _, ts := range s.sinks {
		a := domain.Artifact{
			Format: ts.format,
			Path:   ts.sink.Path(),
			Rows:   ts.sink.Rows(),
		}

		if s.uploader != nil {
			key := domain.ObjectKey(s.opts.Prefix, runID, a.Path)
			if err := s.uploader.Upload(ctx, key, a.Path, ts.format.ContentType()); err != nil {
				errs = append(errs, err)
			} else {
				a.Key = key
				s.logger.Info().Str("key", key).Str("format", string(ts.format)).Msg("export uploaded")
			}
		}

		artifacts = append(artifacts, a)
	}
	return artifacts, errors.Join(errs...)
}
