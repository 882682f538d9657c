package imports

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AllowedExtensions are the workbook formats the server accepts
var AllowedExtensions = []string{".xlsx", ".xls"}

// File is a workbook picked for upload
type File struct {
	Name string
	Data []byte
}

// ReadFile loads a workbook from disk
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &File{Name: filepath.Base(path), Data: data}, nil
}

// Ext returns the lower-cased extension of the file name
func (f *File) Ext() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// ContentType returns the spreadsheet MIME type matching the extension
func (f *File) ContentType() string {
	if f.Ext() == ".xls" {
		return "application/vnd.ms-excel"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Form is one upload request as the user filled it in
type Form struct {
	Kind                 Kind
	File                 *File
	StoreCode            string
	OriginStoreCode      string
	DestinationStoreCode string
}

// Fields returns the multipart form fields sent next to the file
func (f Form) Fields() map[string]string {
	switch f.Kind.Stores() {
	case StoreSingle:
		return map[string]string{"storeCode": strings.TrimSpace(f.StoreCode)}
	case StorePair:
		return map[string]string{
			"originStoreCode":      strings.TrimSpace(f.OriginStoreCode),
			"destinationStoreCode": strings.TrimSpace(f.DestinationStoreCode),
		}
	default:
		return nil
	}
}

func hasAllowedExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
