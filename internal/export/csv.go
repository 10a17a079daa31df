package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spacesedan/sentiboard/internal/apperrors"
	"github.com/spacesedan/sentiboard/internal/models"
)

func WriteCSV(w io.Writer, posts []models.LabeledPost) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return apperrors.Export("CSVExport", "could not write header", err)
	}
	for _, p := range posts {
		if err := cw.Write(toRecord(p)); err != nil {
			return apperrors.Export("CSVExport", fmt.Sprintf("could not write post %s", p.ID), err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperrors.Export("CSVExport", "could not flush", err)
	}
	return nil
}

// ParseCSV reads a file produced by WriteCSV.
func ParseCSV(r io.Reader) ([]models.LabeledPost, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err != nil {
		return nil, apperrors.Validation("CSVParse", "could not read header", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if !slices.Equal(header, Columns) {
		return nil, apperrors.Validation("CSVParse",
			fmt.Sprintf("unexpected header, want %s", strings.Join(Columns, ",")), nil)
	}

	var posts []models.LabeledPost
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.Validation("CSVParse", fmt.Sprintf("row %d is not valid CSV", line), err)
		}
		p, err := fromRecord(record)
		if err != nil {
			return nil, apperrors.Validation("CSVParse", fmt.Sprintf("row %d", line), err)
		}
		posts = append(posts, p)
	}
	return posts, nil
}
