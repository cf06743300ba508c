package ingest

import (
	"fmt"
	"strings"

	"clubroster/internal/models"
)

// MemberRow is a normalized member draft from one CSV row. Number is
// the explicitly supplied member number, empty when the row wants
// auto-assignment.
type MemberRow struct {
	Number string
	Member models.Member
}

// ParseMemberRow validates and defaults one row. Enum fields fall back
// to their defaults; emails survive only when they look like emails;
// date problems are hard row errors.
func ParseMemberRow(row map[string]string, line int) (MemberRow, error) {
	m := models.Member{
		Name:     row["name"],
		Address:  row["address"],
		Suburb:   row["suburb"],
		Postcode: row["postcode"],
	}
	m.State = optionalText(row["state"])
	m.Phone1 = optionalText(row["phone1"])
	m.Phone2 = optionalText(row["phone2"])
	m.Email1 = optionalEmail(row["email1"])
	m.Email2 = optionalEmail(row["email2"])
	m.Comments = optionalText(row["comments"])
	m.LifeMember = parseBool(row["life_member"])
	m.Financial = parseBool(row["financial"])
	m.Inactive = parseBool(row["inactive"])
	m.ReceiveEmails = parseOptIn(row["receive_emails"])
	m.ReceiveSMS = parseOptIn(row["receive_sms"])
	m.FamilyMembers = models.ParseFamilyMembers(row["family_members"])

	m.MembershipType = row["membership_type"]
	if !models.ValidMembershipType(m.MembershipType) {
		m.MembershipType = models.TypeFull
	}
	m.Interest = row["interest"]
	if !models.ValidInterest(m.Interest) {
		m.Interest = models.InterestBoth
	}

	var err error
	if m.DatePaid, err = models.ParseDate(row["date_paid"]); err != nil {
		return MemberRow{}, fmt.Errorf("row %d: date_paid: %v", line, err)
	}
	if m.ExpiryDate, err = models.ParseDate(row["expiry_date"]); err != nil {
		return MemberRow{}, fmt.Errorf("row %d: expiry_date: %v", line, err)
	}

	return MemberRow{Number: strings.TrimSpace(row["member_number"]), Member: m}, nil
}

func optionalText(v string) *string {
	if v = strings.TrimSpace(v); v == "" {
		return nil
	}
	return &v
}

// optionalEmail keeps a value only when it is non-empty and contains @.
func optionalEmail(v string) *string {
	if v = strings.TrimSpace(v); v == "" || !strings.Contains(v, "@") {
		return nil
	}
	return &v
}

// parseBool: true/yes/1 are true, anything else false.
func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "1":
		return true
	}
	return false
}

// parseOptIn: opt-in flags default true unless explicitly negative.
func parseOptIn(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "false", "no", "0":
		return false
	}
	return true
}
