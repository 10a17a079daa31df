package acquisition

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/sentiboard/internal/apperrors"
	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/spacesedan/sentiboard/internal/sentiment"
	"github.com/spacesedan/sentiboard/internal/utils"
)

const UploadedKeyword = "uploaded"

// RequiredColumns must be present in every uploaded file.
var RequiredColumns = []string{"text", "score", "created_at", "subreddit"}

// columnAliases maps alternative header names onto the canonical ones.
var columnAliases = map[string]string{
	"created":            "created_at",
	"created_utc":        "created_at",
	"date":               "created_at",
	"body":               "text",
	"selftext":           "text",
	"comments":           "num_comments",
	"sentiment_compound": "sentiment_score",
}

var uploadTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UploadedRow is a parsed row. Sentiment is set when the file carried its own
// polarity column.
type UploadedRow struct {
	Post      models.Post
	Sentiment *float64
}

// LoadCSV parses an uploaded file. Any structural or row-level problem
// rejects the whole file with a validation error.
func LoadCSV(r io.Reader, maxBytes int64) ([]UploadedRow, error) {
	const op = "Upload"

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, apperrors.Validation(op, "could not read the uploaded file", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, apperrors.Validation(op, fmt.Sprintf("file is larger than %d bytes", maxBytes), nil)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.Validation(op, "file is empty", nil)
	}
	if err != nil {
		return nil, apperrors.Validation(op, "file is not valid CSV", err)
	}

	columns := indexColumns(header)
	if missing := missingColumns(columns); len(missing) > 0 {
		return nil, apperrors.Validation(op,
			fmt.Sprintf("file is missing required columns: %s", strings.Join(missing, ", ")), nil)
	}

	var rows []UploadedRow
	seen := make(map[string]struct{})
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.Validation(op, fmt.Sprintf("row %d is not valid CSV", rowNum), err)
		}
		if isBlank(record) {
			continue
		}

		row, err := parseRow(columns, record, rowNum)
		if err != nil {
			return nil, apperrors.Validation(op, fmt.Sprintf("row %d: %s", rowNum, err.Error()), nil)
		}
		if _, dup := seen[row.Post.ID]; dup {
			slog.Debug("[Upload] Dropping duplicate row",
				slog.Int("row", rowNum),
				slog.String("id", row.Post.ID))
			continue
		}
		seen[row.Post.ID] = struct{}{}
		rows = append(rows, row)
	}

	slog.Info("[Upload] Parsed uploaded file",
		slog.Int("rows", len(rows)),
		slog.Int("bytes", len(data)))
	return rows, nil
}

// LabelRows labels parsed rows, keeping any polarity the file supplied.
func LabelRows(ctx context.Context, labeler sentiment.Labeler, rows []UploadedRow) []models.LabeledPost {
	labeled := make([]models.LabeledPost, 0, len(rows))
	for _, row := range rows {
		lp := models.LabeledPost{Post: row.Post}
		if row.Sentiment != nil {
			if result, err := sentiment.FromScore(*row.Sentiment); err == nil {
				lp.Sentiment = result
				labeled = append(labeled, lp)
				continue
			}
		}
		lp.Sentiment = labeler.Label(ctx, row.Post.Text())
		labeled = append(labeled, lp)
	}
	return labeled
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if _, ok := columns[name]; !ok {
			columns[name] = i
		}
	}
	for alias, canonical := range columnAliases {
		if i, ok := columns[alias]; ok {
			if _, taken := columns[canonical]; !taken {
				columns[canonical] = i
			}
		}
	}
	return columns
}

func missingColumns(columns map[string]int) []string {
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := columns[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseRow(columns map[string]int, record []string, rowNum int) (UploadedRow, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	score, err := parseWholeNumber(field("score"))
	if err != nil {
		return UploadedRow{}, fmt.Errorf("score %q is not a number", field("score"))
	}

	numComments := 0
	if raw := field("num_comments"); raw != "" {
		if numComments, err = parseWholeNumber(raw); err != nil {
			return UploadedRow{}, fmt.Errorf("num_comments %q is not a number", raw)
		}
	}

	createdAt, err := parseUploadTime(field("created_at"))
	if err != nil {
		return UploadedRow{}, fmt.Errorf("created_at %q is not a recognized date", field("created_at"))
	}

	keyword := field("keyword")
	if keyword == "" {
		keyword = UploadedKeyword
	}

	post := models.Post{
		ID:          field("id"),
		Title:       field("title"),
		Body:        field("text"),
		Author:      field("author"),
		Score:       score,
		NumComments: numComments,
		CreatedAt:   createdAt,
		Subreddit:   field("subreddit"),
		Keyword:     keyword,
		URL:         field("url"),
	}
	if post.URL != "" && utils.ValidateVar(post.URL, "http_url") != nil {
		return UploadedRow{}, fmt.Errorf("url %q is not an http or https link", post.URL)
	}
	if post.ID == "" {
		post.ID = derivedID(rowNum, post.Text())
	}

	row := UploadedRow{Post: post}
	if raw := field("sentiment_score"); raw != "" {
		polarity, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(polarity) || polarity < -1 || polarity > 1 {
			return UploadedRow{}, fmt.Errorf("sentiment_score %q is not a polarity in [-1, 1]", raw)
		}
		row.Sentiment = &polarity
	}
	return row, nil
}

func parseWholeNumber(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a whole number: %q", raw)
	}
	// float64(math.MaxInt) rounds up to 2^63, which int cannot hold.
	if f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return 0, fmt.Errorf("out of range: %q", raw)
	}
	return int(f), nil
}

func parseUploadTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range uploadTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(secs) && !math.IsInf(secs, 0) {
		return time.Unix(int64(secs), 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func derivedID(rowNum int, text string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("upload:%d:%s", rowNum, text)))
	return "u_" + hex.EncodeToString(sum[:6])
}
