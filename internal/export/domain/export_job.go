package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidFormat est retournée pour un format d'export inconnu
var ErrInvalidFormat = errors.New("invalid export format")

// ExportFormat représente le format d'export
type ExportFormat string

const (
	ExportFormatCSV     ExportFormat = "csv"
	ExportFormatParquet ExportFormat = "parquet"
)

// ParseFormat valide un format (insensible à la casse)
func ParseFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case ExportFormatCSV, ExportFormatParquet:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
}

// Extension retourne l'extension de fichier du format
func (f ExportFormat) Extension() string {
	return "." + string(f)
}

// ContentType retourne le type MIME du format
func (f ExportFormat) ContentType() string {
	if f == ExportFormatParquet {
		return "application/vnd.apache.parquet"
	}
	return "text/csv"
}

// Artifact fichier produit par un run de génération
type Artifact struct {
	Format ExportFormat
	Path   string
	Rows   int64
	// Key clé objet une fois publié (vide sinon)
	Key string
}

// FileName nom de fichier d'un export de faits
func FileName(f ExportFormat) string {
	return "fact_sales" + f.Extension()
}

// ObjectKey construit la clé objet "prefix/runID/fichier"
func ObjectKey(prefix, runID, path string) string {
	key := runID + "/" + filepath.Base(path)
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}
