package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oapi-codegen/nullable"

	"clubroster/internal/models"
	"clubroster/internal/report"
	"clubroster/internal/roster"
	"clubroster/internal/store"
)

// MemberCreate is the inbound shape for a single member insert. Dates
// travel as text in any of the accepted layouts.
type MemberCreate struct {
	MemberNumber   string   `json:"member_number"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Suburb         string   `json:"suburb"`
	Postcode       string   `json:"postcode"`
	State          string   `json:"state"`
	Phone1         string   `json:"phone1"`
	Phone2         string   `json:"phone2"`
	Email1         string   `json:"email1"`
	Email2         string   `json:"email2"`
	LifeMember     bool     `json:"life_member"`
	Financial      bool     `json:"financial"`
	Inactive       bool     `json:"inactive"`
	MembershipType string   `json:"membership_type"`
	FamilyMembers  []string `json:"family_members"`
	Interest       string   `json:"interest"`
	DatePaid       string   `json:"date_paid"`
	ExpiryDate     string   `json:"expiry_date"`
	Comments       string   `json:"comments"`
	ReceiveEmails  *bool    `json:"receive_emails"`
	ReceiveSMS     *bool    `json:"receive_sms"`
}

// MemberPatch is the partial-update shape. Pointer fields distinguish
// omitted from provided; nullable fields additionally accept an
// explicit null (or empty string) to clear the stored value.
type MemberPatch struct {
	Name           *string                   `json:"name"`
	Address        *string                   `json:"address"`
	Suburb         *string                   `json:"suburb"`
	Postcode       *string                   `json:"postcode"`
	State          nullable.Nullable[string] `json:"state"`
	Phone1         nullable.Nullable[string] `json:"phone1"`
	Phone2         nullable.Nullable[string] `json:"phone2"`
	Email1         nullable.Nullable[string] `json:"email1"`
	Email2         nullable.Nullable[string] `json:"email2"`
	LifeMember     *bool                     `json:"life_member"`
	Financial      *bool                     `json:"financial"`
	Inactive       *bool                     `json:"inactive"`
	MembershipType *string                   `json:"membership_type"`
	FamilyMembers  *[]string                 `json:"family_members"`
	Interest       *string                   `json:"interest"`
	DatePaid       nullable.Nullable[string] `json:"date_paid"`
	ExpiryDate     nullable.Nullable[string] `json:"expiry_date"`
	Comments       nullable.Nullable[string] `json:"comments"`
	ReceiveEmails  *bool                     `json:"receive_emails"`
	ReceiveSMS     *bool                     `json:"receive_sms"`
}

func (s *Service) ListMembers(ctx context.Context, query models.MemberQuery) ([]models.Member, error) {
	members, err := s.st.ListMembers(ctx, query)
	if err != nil {
		return nil, err
	}
	report.SortMembers(members)
	return members, nil
}

func (s *Service) GetMember(ctx context.Context, id string) (models.Member, error) {
	return s.st.GetMember(ctx, id)
}

func (s *Service) CreateMember(ctx context.Context, in MemberCreate) (models.Member, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.Member{}, validationf("name is required")
	}
	if in.MembershipType == "" {
		in.MembershipType = models.TypeFull
	} else if !models.ValidMembershipType(in.MembershipType) {
		return models.Member{}, validationf("invalid membership_type %q", in.MembershipType)
	}
	if in.Interest == "" {
		in.Interest = models.InterestBoth
	} else if !models.ValidInterest(in.Interest) {
		return models.Member{}, validationf("invalid interest %q", in.Interest)
	}

	datePaid, err := models.ParseDate(in.DatePaid)
	if err != nil {
		return models.Member{}, validationf("date_paid: %v", err)
	}
	expiry, err := models.ParseDate(in.ExpiryDate)
	if err != nil {
		return models.Member{}, validationf("expiry_date: %v", err)
	}

	numbers, err := s.st.MemberNumbers(ctx)
	if err != nil {
		return models.Member{}, err
	}
	number := strings.TrimSpace(in.MemberNumber)
	if number != "" {
		if roster.Taken(numbers, number) {
			return models.Member{}, store.ErrConflict
		}
	} else {
		number = roster.NextNumber(numbers)
	}

	now := time.Now().UTC()
	m := models.Member{
		MemberID:       store.NewID("member"),
		MemberNumber:   number,
		Name:           strings.TrimSpace(in.Name),
		Address:        in.Address,
		Suburb:         in.Suburb,
		Postcode:       in.Postcode,
		State:          optional(in.State),
		Phone1:         optional(in.Phone1),
		Phone2:         optional(in.Phone2),
		Email1:         optional(in.Email1),
		Email2:         optional(in.Email2),
		LifeMember:     in.LifeMember,
		Financial:      in.Financial,
		Inactive:       in.Inactive,
		MembershipType: in.MembershipType,
		FamilyMembers:  in.FamilyMembers,
		Interest:       in.Interest,
		DatePaid:       datePaid,
		ExpiryDate:     expiry,
		Comments:       optional(in.Comments),
		ReceiveEmails:  boolOr(in.ReceiveEmails, true),
		ReceiveSMS:     boolOr(in.ReceiveSMS, true),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.st.CreateMember(ctx, m); err != nil {
		return models.Member{}, err
	}
	return m, nil
}

func (s *Service) UpdateMember(ctx context.Context, id string, p MemberPatch) (models.Member, error) {
	if _, err := s.st.GetMember(ctx, id); err != nil {
		return models.Member{}, err
	}

	set := map[string]any{}
	setText(set, "name", p.Name)
	setText(set, "address", p.Address)
	setText(set, "suburb", p.Suburb)
	setText(set, "postcode", p.Postcode)
	setClearable(set, "state", p.State)
	setClearable(set, "phone1", p.Phone1)
	setClearable(set, "phone2", p.Phone2)
	setClearable(set, "email1", p.Email1)
	setClearable(set, "email2", p.Email2)
	setClearable(set, "comments", p.Comments)
	setBool(set, "life_member", p.LifeMember)
	setBool(set, "financial", p.Financial)
	setBool(set, "inactive", p.Inactive)
	setBool(set, "receive_emails", p.ReceiveEmails)
	setBool(set, "receive_sms", p.ReceiveSMS)

	if p.MembershipType != nil {
		if !models.ValidMembershipType(*p.MembershipType) {
			return models.Member{}, validationf("invalid membership_type %q", *p.MembershipType)
		}
		set["membership_type"] = *p.MembershipType
	}
	if p.Interest != nil {
		if !models.ValidInterest(*p.Interest) {
			return models.Member{}, validationf("invalid interest %q", *p.Interest)
		}
		set["interest"] = *p.Interest
	}
	if p.FamilyMembers != nil {
		set["family_members"] = sqlText(models.FamilyMembersText(*p.FamilyMembers))
	}
	if err := setDate(set, "date_paid", p.DatePaid); err != nil {
		return models.Member{}, validationf("date_paid: %v", err)
	}
	if err := setDate(set, "expiry_date", p.ExpiryDate); err != nil {
		return models.Member{}, validationf("expiry_date: %v", err)
	}

	if len(set) == 0 {
		return models.Member{}, ErrEmptyUpdate
	}
	set["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	if err := s.st.UpdateMember(ctx, id, set); err != nil {
		return models.Member{}, err
	}
	return s.st.GetMember(ctx, id)
}

// DeleteMember removes the member and every vehicle linked to it,
// returning how many vehicles went with them.
func (s *Service) DeleteMember(ctx context.Context, id string) (int, error) {
	if _, err := s.st.GetMember(ctx, id); err != nil {
		return 0, err
	}
	n, err := s.st.DeleteVehiclesByMember(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := s.st.DeleteMember(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return n, err
	}
	return n, nil
}

func (s *Service) Suburbs(ctx context.Context) ([]string, error) {
	return s.st.Suburbs(ctx)
}

func optional(v string) *string {
	if v = strings.TrimSpace(v); v == "" {
		return nil
	}
	return &v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func sqlText(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func setText(set map[string]any, col string, v *string) {
	if v != nil {
		set[col] = *v
	}
}

func setBool(set map[string]any, col string, v *bool) {
	if v != nil {
		if *v {
			set[col] = 1
		} else {
			set[col] = 0
		}
	}
}

// setClearable maps omitted to no-op, null or empty string to NULL,
// anything else to the trimmed value.
func setClearable(set map[string]any, col string, n nullable.Nullable[string]) {
	if !n.IsSpecified() {
		return
	}
	if n.IsNull() {
		set[col] = nil
		return
	}
	v := strings.TrimSpace(n.MustGet())
	if v == "" {
		set[col] = nil
		return
	}
	set[col] = v
}

func setDate(set map[string]any, col string, n nullable.Nullable[string]) error {
	if !n.IsSpecified() {
		return nil
	}
	if n.IsNull() {
		set[col] = nil
		return nil
	}
	t, err := models.ParseDate(n.MustGet())
	if err != nil {
		return err
	}
	if t == nil {
		set[col] = nil
		return nil
	}
	set[col] = t.UTC().Format(time.RFC3339)
	return nil
}
