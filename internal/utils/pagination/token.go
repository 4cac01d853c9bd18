package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateFormat = "2006-01-02"

// HistoryCursor is the position in the register history encoded in a page token.
// It repeats the date filter so a token alone is enough to fetch the next page.
type HistoryCursor struct {
	From  *time.Time
	To    *time.Time
	Page  int
	Limit int
}

// EncodeHistoryToken creates a base64 encoded token for the given history position.
func EncodeHistoryToken(cur HistoryCursor) string {
	return EncodeMultiFieldToken(
		formatDate(cur.From),
		formatDate(cur.To),
		strconv.Itoa(cur.Page),
		strconv.Itoa(cur.Limit),
	)
}

// DecodeHistoryToken parses a token produced by EncodeHistoryToken.
func DecodeHistoryToken(token string) (HistoryCursor, error) {
	parts, err := DecodeMultiFieldToken(token)
	if err != nil {
		return HistoryCursor{}, err
	}
	if len(parts) != 4 {
		return HistoryCursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	var cur HistoryCursor
	if cur.From, err = parseDate(parts[0]); err != nil {
		return HistoryCursor{}, fmt.Errorf("invalid pagination token format (from date parse): %w", err)
	}
	if cur.To, err = parseDate(parts[1]); err != nil {
		return HistoryCursor{}, fmt.Errorf("invalid pagination token format (to date parse): %w", err)
	}
	if cur.Page, err = strconv.Atoi(parts[2]); err != nil || cur.Page < 1 {
		return HistoryCursor{}, fmt.Errorf("invalid pagination token format (page)")
	}
	if cur.Limit, err = strconv.Atoi(parts[3]); err != nil || cur.Limit < 1 {
		return HistoryCursor{}, fmt.Errorf("invalid pagination token format (limit)")
	}
	return cur, nil
}

// EncodeMultiFieldToken creates a token with any number of string fields
func EncodeMultiFieldToken(fields ...string) string {
	tokenStr := strings.Join(fields, "|")
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeMultiFieldToken decodes a token into its component fields
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}

	tokenStr := string(decodedBytes)
	parts := strings.Split(tokenStr, "|")
	return parts, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateFormat)
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
