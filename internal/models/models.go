package models

import (
	"strings"
	"time"
)

// Roles assignable to staff accounts. The first account ever registered
// becomes admin; self-registrations after that default to member_editor.
const (
	RoleAdmin        = "admin"
	RoleFullEditor   = "full_editor"
	RoleMemberEditor = "member_editor"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleFullEditor, RoleMemberEditor:
		return true
	}
	return false
}

// Membership type and interest catalogs. Unknown values are coerced to
// the defaults during bulk ingestion.
const (
	TypeFull   = "Full"
	TypeFamily = "Family"
	TypeJunior = "Junior"

	InterestDrag = "Drag Racing"
	InterestCar  = "Car Enthusiast"
	InterestBoth = "Both"
)

func ValidMembershipType(v string) bool {
	return v == TypeFull || v == TypeFamily || v == TypeJunior
}

func ValidInterest(v string) bool {
	return v == InterestDrag || v == InterestCar || v == InterestBoth
}

type User struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash *string   `json:"-"`
	Picture      *string   `json:"picture,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session rows store a sha256 of the opaque token, never the token
// itself. Expired rows are left in place and rejected at lookup time.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Member struct {
	MemberID       string     `json:"member_id"`
	MemberNumber   string     `json:"member_number"`
	Name           string     `json:"name"`
	Address        string     `json:"address"`
	Suburb         string     `json:"suburb"`
	Postcode       string     `json:"postcode"`
	State          *string    `json:"state,omitempty"`
	Phone1         *string    `json:"phone1,omitempty"`
	Phone2         *string    `json:"phone2,omitempty"`
	Email1         *string    `json:"email1,omitempty"`
	Email2         *string    `json:"email2,omitempty"`
	LifeMember     bool       `json:"life_member"`
	Financial      bool       `json:"financial"`
	Inactive       bool       `json:"inactive"`
	MembershipType string     `json:"membership_type"`
	FamilyMembers  []string   `json:"family_members,omitempty"`
	Interest       string     `json:"interest"`
	DatePaid       *time.Time `json:"date_paid,omitempty"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	Comments       *string    `json:"comments,omitempty"`
	ReceiveEmails  bool       `json:"receive_emails"`
	ReceiveSMS     bool       `json:"receive_sms"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type Vehicle struct {
	VehicleID     string     `json:"vehicle_id"`
	MemberID      string     `json:"member_id"`
	LogBookNumber string     `json:"log_book_number"`
	EntryDate     *time.Time `json:"entry_date,omitempty"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	Make          string     `json:"make"`
	BodyStyle     string     `json:"body_style"`
	Model         string     `json:"model"`
	Year          int        `json:"year"`
	Registration  string     `json:"registration"`
	Status        string     `json:"status"`
	Reason        string     `json:"reason"`
	Archived      bool       `json:"archived"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

const (
	OptionTypeStatus = "status"
	OptionTypeReason = "reason"
)

type VehicleOption struct {
	OptionID  string    `json:"option_id"`
	Type      string    `json:"type"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

type MemberQuery struct {
	Search       string
	MemberNumber string
}

type VehicleQuery struct {
	MemberID        string
	Registration    string
	IncludeArchived bool
}

// BulkResult is the outcome of a CSV upload. SkippedCount counts
// duplicates that were deliberately not inserted; Errors is a capped
// preview of row-level failures with MoreErrors carrying the overflow.
type BulkResult struct {
	InsertedCount int      `json:"inserted_count"`
	SkippedCount  int      `json:"skipped_count"`
	Errors        []string `json:"errors"`
	MoreErrors    int      `json:"more_errors"`
}

type ExportFilters struct {
	ReceiveEmails *bool   `json:"receive_emails,omitempty"`
	ReceiveSMS    *bool   `json:"receive_sms,omitempty"`
	Interest      *string `json:"interest,omitempty"`
}

// FamilyMembersText joins the list for TEXT storage; an empty list maps
// to an absent column value.
func FamilyMembersText(names []string) *string {
	if len(names) == 0 {
		return nil
	}
	s := strings.Join(names, ";")
	return &s
}

func ParseFamilyMembers(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
