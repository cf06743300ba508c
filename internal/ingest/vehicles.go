package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"clubroster/internal/models"
)

// ParseVehicleRow normalizes one vehicle row. member_id is mandatory;
// the registration is kept verbatim for the caller's dedup pass.
func ParseVehicleRow(row map[string]string, line int) (models.Vehicle, error) {
	v := models.Vehicle{
		MemberID:      strings.TrimSpace(row["member_id"]),
		LogBookNumber: row["log_book_number"],
		Make:          row["make"],
		BodyStyle:     row["body_style"],
		Model:         row["model"],
		Registration:  strings.TrimSpace(row["registration"]),
		Status:        row["status"],
		Reason:        row["reason"],
	}
	if v.MemberID == "" {
		return models.Vehicle{}, fmt.Errorf("row %d: member_id is required", line)
	}
	if v.Status == "" {
		v.Status = "Active"
	}

	if year := strings.TrimSpace(row["year"]); year != "" {
		n, err := strconv.Atoi(year)
		if err != nil {
			return models.Vehicle{}, fmt.Errorf("row %d: year: invalid value %q", line, year)
		}
		v.Year = n
	}

	var err error
	if v.EntryDate, err = models.ParseDate(row["entry_date"]); err != nil {
		return models.Vehicle{}, fmt.Errorf("row %d: entry_date: %v", line, err)
	}
	if v.ExpiryDate, err = models.ParseDate(row["expiry_date"]); err != nil {
		return models.Vehicle{}, fmt.Errorf("row %d: expiry_date: %v", line, err)
	}
	return v, nil
}
