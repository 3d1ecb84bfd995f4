package files

import (
	"fmt"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Inspector fills optional document metadata before a file is staged.
type Inspector interface {
	Inspect(f *File) (*File, error)
}

// PDFInspector reads the page count of PDF documents. Other types pass through.
type PDFInspector struct{}

func (PDFInspector) Inspect(f *File) (*File, error) {
	if f == nil || f.Ext() != "pdf" {
		return f, nil
	}

	file, reader, err := pdf.Open(f.Path)
	if err != nil {
		return f, fmt.Errorf("open pdf %s: %w", f.Name, err)
	}
	defer file.Close()

	inspected := *f
	inspected.Pages = reader.NumPage()

	return &inspected, nil
}

// InspectAll runs the inspector over files. A failed inspection keeps the
// original entry; the server decides whether the document is usable.
func InspectAll(inspector Inspector, list []*File, logger *zap.Logger) []*File {
	if inspector == nil {
		return list
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	result := make([]*File, 0, len(list))
	for _, f := range list {
		inspected, err := inspector.Inspect(f)
		if err != nil {
			logger.Debug("document inspection failed", zap.String("filename", f.Name), zap.Error(err))
			result = append(result, f)
			continue
		}
		result = append(result, inspected)
	}

	return result
}
