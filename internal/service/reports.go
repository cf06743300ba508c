package service

import (
	"context"
	"io"
	"time"

	"clubroster/internal/models"
	"clubroster/internal/report"
)

func (s *Service) expiryWindow() time.Duration {
	return time.Duration(s.cfg.ExpiryWindowDays) * 24 * time.Hour
}

func (s *Service) loadRoster(ctx context.Context) ([]models.Member, []models.Vehicle, error) {
	members, err := s.st.ListMembers(ctx, models.MemberQuery{})
	if err != nil {
		return nil, nil, err
	}
	vehicles, err := s.st.ListVehicles(ctx, models.VehicleQuery{IncludeArchived: true})
	if err != nil {
		return nil, nil, err
	}
	return members, vehicles, nil
}

func (s *Service) DashboardStats(ctx context.Context) (report.Stats, error) {
	members, vehicles, err := s.loadRoster(ctx)
	if err != nil {
		return report.Stats{}, err
	}
	return report.Dashboard(members, vehicles), nil
}

func (s *Service) MemberReport(ctx context.Context, filterType string) ([]report.Row, error) {
	members, vehicles, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}
	return report.Members(members, vehicles, filterType, time.Now().UTC(), s.expiryWindow())
}

func (s *Service) ContactList(ctx context.Context, listType, interest string) (report.ContactList, error) {
	members, err := s.st.ListMembers(ctx, models.MemberQuery{})
	if err != nil {
		return report.ContactList{}, err
	}
	report.SortMembers(members)
	return report.Contacts(members, listType, interest)
}

// ExportMembersCSV streams the filtered roster as CSV. Column layout
// follows the first exported record.
func (s *Service) ExportMembersCSV(ctx context.Context, filters models.ExportFilters, w io.Writer) error {
	members, err := s.st.ListMembers(ctx, models.MemberQuery{})
	if err != nil {
		return err
	}
	report.SortMembers(members)
	return report.WriteCSV(w, report.FilterForExport(members, filters))
}

// PrintableList is the full roster in member-number order, the shape
// the printable membership list is rendered from.
func (s *Service) PrintableList(ctx context.Context) ([]models.Member, error) {
	return s.ListMembers(ctx, models.MemberQuery{})
}

// MarkExpiredUnfinancial flips financial off for every member whose
// expiry date has passed. Rows with unparsable expiry text are skipped
// so one bad record cannot stall the sweep; only successful flips count.
func (s *Service) MarkExpiredUnfinancial(ctx context.Context) (int, error) {
	entries, err := s.st.FinancialMemberExpiries(ctx)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	updated := 0
	for _, e := range entries {
		expiry, err := models.ParseDate(e.ExpiryDate)
		if err != nil || expiry == nil {
			continue
		}
		if !expiry.Before(now) {
			continue
		}
		set := map[string]any{
			"financial":  0,
			"updated_at": now.Format(time.RFC3339),
		}
		if err := s.st.UpdateMember(ctx, e.MemberID, set); err != nil {
			continue
		}
		updated++
	}
	return updated, nil
}

const clearAllConfirmation = "DELETE_ALL_DATA"

// ClearAllData wipes members, vehicles and the option catalogs. User
// accounts and sessions survive so the caller stays logged in.
func (s *Service) ClearAllData(ctx context.Context, confirmation string) error {
	if confirmation != clearAllConfirmation {
		return validationf("confirmation must be %q", clearAllConfirmation)
	}
	if err := s.st.DeleteAllVehicles(ctx); err != nil {
		return err
	}
	if err := s.st.DeleteAllMembers(ctx); err != nil {
		return err
	}
	return s.st.DeleteAllOptions(ctx)
}
