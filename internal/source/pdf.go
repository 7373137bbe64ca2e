// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"fmt"
	"strings"

	"piimerge/internal/detector"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// maxPDFPages limits extraction on very large documents
const maxPDFPages = 50

// loadPDF validates the file structure, then extracts the plain text of each
// page. Pages are separated by a form feed so offsets stay meaningful.
func loadPDF(path string) ([]detector.Input, error) {
	if err := api.ValidateFile(path, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("invalid PDF: %w", err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	pages := min(r.NumPage(), maxPDFPages)
	texts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("error reading page %d: %w", i, err)
		}
		texts = append(texts, strings.TrimSpace(text))
	}

	return []detector.Input{{Text: strings.Join(texts, "\n\f\n")}}, nil
}
