// Package report computes dashboard aggregates, filtered member
// reports and contact lists over roster snapshots. It holds no state;
// callers load entities through the store and pass them in.
package report

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"clubroster/internal/models"
	"clubroster/internal/roster"
)

var ErrUnknownFilter = errors.New("unknown report filter")
var ErrUnknownListType = errors.New("unknown contact list type")

type LifeMemberStats struct {
	Financial   int `json:"financial"`
	Unfinancial int `json:"unfinancial"`
}

type Stats struct {
	TotalMembers        int             `json:"total_members"`
	FinancialMembers    int             `json:"financial_members"`
	UnfinancialMembers  int             `json:"unfinancial_members"`
	InactiveMembers     int             `json:"inactive_members"`
	LifeMembers         LifeMemberStats `json:"life_members"`
	MembersWithVehicles int             `json:"members_with_vehicles"`
	ActiveVehicles      int             `json:"active_vehicles"`
	Interest            map[string]int  `json:"interest"`
	MembershipType      map[string]int  `json:"membership_type"`
}

// Dashboard computes the aggregate counts. Financial splits cover only
// non-inactive members; the interest breakdown covers everyone; the
// membership-type breakdown counts non-inactive members per type with
// inactive members under their own key.
func Dashboard(members []models.Member, vehicles []models.Vehicle) Stats {
	stats := Stats{
		Interest: map[string]int{
			models.InterestDrag: 0,
			models.InterestCar:  0,
			models.InterestBoth: 0,
		},
		MembershipType: map[string]int{
			models.TypeFull:   0,
			models.TypeFamily: 0,
			models.TypeJunior: 0,
			"inactive":        0,
		},
	}

	linked := map[string]bool{}
	for _, v := range vehicles {
		if v.Archived {
			continue
		}
		stats.ActiveVehicles++
		linked[v.MemberID] = true
	}

	for _, m := range members {
		stats.TotalMembers++
		stats.Interest[m.Interest]++
		if m.Inactive {
			stats.InactiveMembers++
			stats.MembershipType["inactive"]++
		} else {
			stats.MembershipType[m.MembershipType]++
			if m.Financial {
				stats.FinancialMembers++
			} else {
				stats.UnfinancialMembers++
			}
			if m.LifeMember {
				if m.Financial {
					stats.LifeMembers.Financial++
				} else {
					stats.LifeMembers.Unfinancial++
				}
			}
		}
		if linked[m.MemberID] {
			stats.MembersWithVehicles++
		}
	}
	return stats
}

type Row struct {
	MemberID       string `json:"member_id"`
	MemberNumber   string `json:"member_number"`
	Name           string `json:"name"`
	Suburb         string `json:"suburb"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	MembershipType string `json:"membership_type"`
	Financial      bool   `json:"financial"`
	ExpiryDate     string `json:"expiry_date"`
}

// Members applies a report filter and projects the survivors into
// rows sorted by the member-number listing order. Every filter except
// the literal "all" first drops inactive members; the expiry window is
// [now, now+window].
func Members(members []models.Member, vehicles []models.Vehicle, filterType string, now time.Time, window time.Duration) ([]Row, error) {
	hasActive := map[string]bool{}
	expiringVehicle := map[string]bool{}
	expiredVehicle := map[string]bool{}
	until := now.Add(window)
	for _, v := range vehicles {
		if v.Archived {
			continue
		}
		hasActive[v.MemberID] = true
		if v.Status != "Active" || v.ExpiryDate == nil {
			continue
		}
		if v.ExpiryDate.Before(now) {
			expiredVehicle[v.MemberID] = true
		} else if !v.ExpiryDate.After(until) {
			expiringVehicle[v.MemberID] = true
		}
	}

	var keep func(models.Member) bool
	switch filterType {
	case "", "all":
		keep = func(models.Member) bool { return true }
	case "inactive_only":
		keep = func(m models.Member) bool { return m.Inactive }
	case "unfinancial":
		keep = func(m models.Member) bool { return !m.Financial }
	case "with_vehicle":
		keep = func(m models.Member) bool { return hasActive[m.MemberID] }
	case "unfinancial_with_vehicle":
		keep = func(m models.Member) bool { return !m.Financial && hasActive[m.MemberID] }
	case "expiring_soon":
		keep = func(m models.Member) bool {
			return m.ExpiryDate != nil && !m.ExpiryDate.Before(now) && !m.ExpiryDate.After(until)
		}
	case "vehicles_expiring_soon":
		keep = func(m models.Member) bool { return expiringVehicle[m.MemberID] }
	case "expired_vehicles":
		keep = func(m models.Member) bool { return expiredVehicle[m.MemberID] }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, filterType)
	}

	var rows []Row
	for _, m := range members {
		if filterType != "" && filterType != "all" && filterType != "inactive_only" && m.Inactive {
			continue
		}
		if !keep(m) {
			continue
		}
		rows = append(rows, Row{
			MemberID:       m.MemberID,
			MemberNumber:   m.MemberNumber,
			Name:           m.Name,
			Suburb:         m.Suburb,
			Phone:          joinContacts(m.Phone1, m.Phone2),
			Email:          joinContacts(m.Email1, m.Email2),
			MembershipType: m.MembershipType,
			Financial:      m.Financial,
			ExpiryDate:     models.DateOnly(m.ExpiryDate),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return roster.Less(rows[i].MemberNumber, rows[j].MemberNumber) })
	return rows, nil
}

// joinContacts concatenates the two contact fields with "; " when both
// are present.
func joinContacts(a, b *string) string {
	var parts []string
	if a != nil && strings.TrimSpace(*a) != "" {
		parts = append(parts, strings.TrimSpace(*a))
	}
	if b != nil && strings.TrimSpace(*b) != "" {
		parts = append(parts, strings.TrimSpace(*b))
	}
	return strings.Join(parts, "; ")
}

type ContactList struct {
	ListType string `json:"list_type"`
	Contacts string `json:"contacts"`
	Count    int    `json:"count"`
}

// Contacts extracts the opted-in contact list: active members only,
// both contact fields, exact duplicates removed in first-seen order.
func Contacts(members []models.Member, listType, interest string) (ContactList, error) {
	if listType != "email" && listType != "sms" {
		return ContactList{}, fmt.Errorf("%w: %q", ErrUnknownListType, listType)
	}

	seen := map[string]bool{}
	var values []string
	add := func(v *string) {
		if v == nil {
			return
		}
		s := strings.TrimSpace(*v)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		values = append(values, s)
	}

	for _, m := range members {
		if m.Inactive {
			continue
		}
		if interest != "" && m.Interest != interest {
			continue
		}
		if listType == "email" {
			if !m.ReceiveEmails {
				continue
			}
			add(m.Email1)
			add(m.Email2)
		} else {
			if !m.ReceiveSMS {
				continue
			}
			add(m.Phone1)
			add(m.Phone2)
		}
	}
	return ContactList{ListType: listType, Contacts: strings.Join(values, ";"), Count: len(values)}, nil
}

// SortMembers orders full member records by the listing rule.
func SortMembers(members []models.Member) {
	sort.SliceStable(members, func(i, j int) bool {
		return roster.Less(members[i].MemberNumber, members[j].MemberNumber)
	})
}
