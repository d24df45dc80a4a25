package model

import (
	"path/filepath"
	"strings"
)

// FileType represents supported file types, independent of compression
type FileType int

const (
	// FileTypeCSV represents CSV file type
	FileTypeCSV FileType = iota
	// FileTypeTSV represents TSV file type
	FileTypeTSV
	// FileTypeLTSV represents LTSV file type
	FileTypeLTSV
	// FileTypeParquet represents Parquet file type
	FileTypeParquet
	// FileTypeXLSX represents Excel XLSX file type
	FileTypeXLSX
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File extensions
const (
	// ExtCSV is the CSV file extension
	ExtCSV = ".csv"
	// ExtTSV is the TSV file extension
	ExtTSV = ".tsv"
	// ExtLTSV is the LTSV file extension
	ExtLTSV = ".ltsv"
	// ExtParquet is the Parquet file extension
	ExtParquet = ".parquet"
	// ExtXLSX is the Excel XLSX file extension
	ExtXLSX = ".xlsx"
	// ExtGZ is the gzip compression extension
	ExtGZ = ".gz"
	// ExtBZ2 is the bzip2 compression extension
	ExtBZ2 = ".bz2"
	// ExtXZ is the xz compression extension
	ExtXZ = ".xz"
	// ExtZSTD is the zstd compression extension
	ExtZSTD = ".zst"
)

// String returns the file type name
func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "csv"
	case FileTypeTSV:
		return "tsv"
	case FileTypeLTSV:
		return "ltsv"
	case FileTypeParquet:
		return "parquet"
	case FileTypeXLSX:
		return "xlsx"
	default:
		return "unsupported"
	}
}

// Extension returns the file extension for the FileType
func (ft FileType) Extension() string {
	switch ft {
	case FileTypeCSV:
		return ExtCSV
	case FileTypeTSV:
		return ExtTSV
	case FileTypeLTSV:
		return ExtLTSV
	case FileTypeParquet:
		return ExtParquet
	case FileTypeXLSX:
		return ExtXLSX
	default:
		return ""
	}
}

// File is a data file path with its detected format and compression.
type File struct {
	path        string
	fileType    FileType
	compression CompressionType
}

// NewFile creates a new File. Extensions are matched case-insensitively,
// so census bulk files such as "KS101EWDATA.CSV" are recognised.
func NewFile(path string) *File {
	fileType, compression := DetectFileType(path)
	return &File{
		path:        path,
		fileType:    fileType,
		compression: compression,
	}
}

// Path returns file path
func (f *File) Path() string {
	return f.path
}

// Type returns the file type without compression
func (f *File) Type() FileType {
	return f.fileType
}

// Compression returns the compression of the file
func (f *File) Compression() CompressionType {
	return f.compression
}

// IsCompressed returns true if file is compressed
func (f *File) IsCompressed() bool {
	return f.compression != CompressionNone
}

// IsSupported returns true if the file type can be parsed
func (f *File) IsSupported() bool {
	return f.fileType != FileTypeUnsupported
}

// DetectFileType detects file type and compression from the path
func DetectFileType(path string) (FileType, CompressionType) {
	base, compression := trimCompression(strings.ToLower(path))

	switch filepath.Ext(base) {
	case ExtCSV:
		return FileTypeCSV, compression
	case ExtTSV:
		return FileTypeTSV, compression
	case ExtLTSV:
		return FileTypeLTSV, compression
	case ExtParquet:
		return FileTypeParquet, compression
	case ExtXLSX:
		return FileTypeXLSX, compression
	default:
		return FileTypeUnsupported, compression
	}
}

// IsSupportedFile checks if the file has a supported extension
func IsSupportedFile(fileName string) bool {
	ft, _ := DetectFileType(fileName)
	return ft != FileTypeUnsupported
}

func trimCompression(path string) (string, CompressionType) {
	for _, c := range []CompressionType{CompressionGZ, CompressionBZ2, CompressionXZ, CompressionZSTD} {
		if strings.HasSuffix(path, c.Extension()) {
			return strings.TrimSuffix(path, c.Extension()), c
		}
	}
	return path, CompressionNone
}
