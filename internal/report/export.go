package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"clubroster/internal/models"
)

// FilterForExport selects the members matching the export filters.
func FilterForExport(members []models.Member, filters models.ExportFilters) []models.Member {
	var out []models.Member
	for _, m := range members {
		if filters.ReceiveEmails != nil && m.ReceiveEmails != *filters.ReceiveEmails {
			continue
		}
		if filters.ReceiveSMS != nil && m.ReceiveSMS != *filters.ReceiveSMS {
			continue
		}
		if filters.Interest != nil && *filters.Interest != "" && m.Interest != *filters.Interest {
			continue
		}
		out = append(out, m)
	}
	return out
}

// WriteCSV streams members as CSV. The header is derived from the
// first record's field set (its JSON keys, sorted); later records fill
// missing fields with the empty string. An empty result writes
// nothing, not even a header.
func WriteCSV(w io.Writer, members []models.Member) error {
	if len(members) == 0 {
		return nil
	}
	records := make([]map[string]any, len(members))
	for i, m := range members {
		raw, err := json.Marshal(m)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &records[i]); err != nil {
			return err
		}
	}

	header := make([]string, 0, len(records[0]))
	for key := range records[0] {
		header = append(header, key)
	}
	sort.Strings(header)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for _, record := range records {
		for i, key := range header {
			row[i] = cellText(record[key])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case []any:
		parts := make([]string, len(t))
		for i, p := range t {
			parts[i] = cellText(p)
		}
		return strings.Join(parts, ";")
	default:
		return fmt.Sprintf("%v", t)
	}
}
