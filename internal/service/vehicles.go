package service

import (
	"context"
	"strings"
	"time"

	"github.com/oapi-codegen/nullable"

	"clubroster/internal/models"
	"clubroster/internal/store"
)

type VehicleCreate struct {
	MemberID      string `json:"member_id"`
	LogBookNumber string `json:"log_book_number"`
	EntryDate     string `json:"entry_date"`
	ExpiryDate    string `json:"expiry_date"`
	Make          string `json:"make"`
	BodyStyle     string `json:"body_style"`
	Model         string `json:"model"`
	Year          int    `json:"year"`
	Registration  string `json:"registration"`
	Status        string `json:"status"`
	Reason        string `json:"reason"`
}

type VehiclePatch struct {
	LogBookNumber *string                   `json:"log_book_number"`
	EntryDate     nullable.Nullable[string] `json:"entry_date"`
	ExpiryDate    nullable.Nullable[string] `json:"expiry_date"`
	Make          *string                   `json:"make"`
	BodyStyle     *string                   `json:"body_style"`
	Model         *string                   `json:"model"`
	Year          *int                      `json:"year"`
	Registration  *string                   `json:"registration"`
	Status        *string                   `json:"status"`
	Reason        nullable.Nullable[string] `json:"reason"`
}

func (s *Service) ListVehicles(ctx context.Context, query models.VehicleQuery) ([]models.Vehicle, error) {
	return s.st.ListVehicles(ctx, query)
}

func (s *Service) GetVehicle(ctx context.Context, id string) (models.Vehicle, error) {
	return s.st.GetVehicle(ctx, id)
}

// hasActiveRegistration reports whether a non-archived vehicle already
// carries the registration, compared case-insensitively.
func (s *Service) hasActiveRegistration(ctx context.Context, registration string) (bool, error) {
	if registration == "" {
		return false, nil
	}
	regs, err := s.st.ActiveRegistrations(ctx)
	if err != nil {
		return false, err
	}
	for _, r := range regs {
		if strings.EqualFold(strings.TrimSpace(r), registration) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) CreateVehicle(ctx context.Context, in VehicleCreate) (models.Vehicle, error) {
	if strings.TrimSpace(in.MemberID) == "" {
		return models.Vehicle{}, validationf("member_id is required")
	}
	if _, err := s.st.GetMember(ctx, in.MemberID); err != nil {
		return models.Vehicle{}, err
	}
	entry, err := models.ParseDate(in.EntryDate)
	if err != nil {
		return models.Vehicle{}, validationf("entry_date: %v", err)
	}
	expiry, err := models.ParseDate(in.ExpiryDate)
	if err != nil {
		return models.Vehicle{}, validationf("expiry_date: %v", err)
	}

	registration := strings.TrimSpace(in.Registration)
	dup, err := s.hasActiveRegistration(ctx, registration)
	if err != nil {
		return models.Vehicle{}, err
	}
	if dup {
		return models.Vehicle{}, store.ErrConflict
	}

	status := in.Status
	if status == "" {
		status = "Active"
	}
	now := time.Now().UTC()
	v := models.Vehicle{
		VehicleID:     store.NewID("vehicle"),
		MemberID:      strings.TrimSpace(in.MemberID),
		LogBookNumber: in.LogBookNumber,
		EntryDate:     entry,
		ExpiryDate:    expiry,
		Make:          in.Make,
		BodyStyle:     in.BodyStyle,
		Model:         in.Model,
		Year:          in.Year,
		Registration:  registration,
		Status:        status,
		Reason:        in.Reason,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.st.CreateVehicle(ctx, v); err != nil {
		return models.Vehicle{}, err
	}
	return v, nil
}

func (s *Service) UpdateVehicle(ctx context.Context, id string, p VehiclePatch) (models.Vehicle, error) {
	if _, err := s.st.GetVehicle(ctx, id); err != nil {
		return models.Vehicle{}, err
	}

	set := map[string]any{}
	setText(set, "log_book_number", p.LogBookNumber)
	setText(set, "make", p.Make)
	setText(set, "body_style", p.BodyStyle)
	setText(set, "model", p.Model)
	setText(set, "status", p.Status)
	setClearable(set, "reason", p.Reason)
	if p.Year != nil {
		set["year"] = *p.Year
	}
	if p.Registration != nil {
		set["registration"] = strings.TrimSpace(*p.Registration)
	}
	if err := setDate(set, "entry_date", p.EntryDate); err != nil {
		return models.Vehicle{}, validationf("entry_date: %v", err)
	}
	if err := setDate(set, "expiry_date", p.ExpiryDate); err != nil {
		return models.Vehicle{}, validationf("expiry_date: %v", err)
	}

	if len(set) == 0 {
		return models.Vehicle{}, ErrEmptyUpdate
	}
	set["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	if err := s.st.UpdateVehicle(ctx, id, set); err != nil {
		return models.Vehicle{}, err
	}
	return s.st.GetVehicle(ctx, id)
}

// ArchiveVehicle soft-deletes: the row survives, drops out of default
// listings and frees its registration for reuse.
func (s *Service) ArchiveVehicle(ctx context.Context, id string) (models.Vehicle, error) {
	return s.setArchived(ctx, id, 1)
}

func (s *Service) RestoreVehicle(ctx context.Context, id string) (models.Vehicle, error) {
	return s.setArchived(ctx, id, 0)
}

func (s *Service) setArchived(ctx context.Context, id string, flag int) (models.Vehicle, error) {
	if _, err := s.st.GetVehicle(ctx, id); err != nil {
		return models.Vehicle{}, err
	}
	set := map[string]any{
		"archived":   flag,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.st.UpdateVehicle(ctx, id, set); err != nil {
		return models.Vehicle{}, err
	}
	return s.st.GetVehicle(ctx, id)
}

func (s *Service) DeleteVehiclePermanently(ctx context.Context, id string) error {
	return s.st.DeleteVehicle(ctx, id)
}

func (s *Service) ListVehicleOptions(ctx context.Context, optionType string) ([]models.VehicleOption, error) {
	if optionType != "" && optionType != models.OptionTypeStatus && optionType != models.OptionTypeReason {
		return nil, validationf("invalid option type %q", optionType)
	}
	return s.st.ListOptions(ctx, optionType)
}

func (s *Service) CreateVehicleOption(ctx context.Context, optionType, value string) (models.VehicleOption, error) {
	if optionType != models.OptionTypeStatus && optionType != models.OptionTypeReason {
		return models.VehicleOption{}, validationf("invalid option type %q", optionType)
	}
	if strings.TrimSpace(value) == "" {
		return models.VehicleOption{}, validationf("value is required")
	}
	o := models.VehicleOption{
		OptionID:  store.NewID("option"),
		Type:      optionType,
		Value:     strings.TrimSpace(value),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.st.CreateOption(ctx, o); err != nil {
		return models.VehicleOption{}, err
	}
	return o, nil
}

func (s *Service) DeleteVehicleOption(ctx context.Context, id string) error {
	return s.st.DeleteOption(ctx, id)
}

var defaultStatusOptions = []string{"Active", "Cancelled", "Inactive"}
var defaultReasonOptions = []string{"Blank", "Sold Vehicle", "No Longer Financial", "Lost Log Book"}

// EnsureDefaultOptions seeds the status and reason catalogs on first
// boot; a type that already has rows is left alone.
func (s *Service) EnsureDefaultOptions(ctx context.Context) error {
	seed := func(optionType string, values []string) error {
		n, err := s.st.CountOptionsByType(ctx, optionType)
		if err != nil || n > 0 {
			return err
		}
		for _, v := range values {
			o := models.VehicleOption{
				OptionID:  store.NewID("option"),
				Type:      optionType,
				Value:     v,
				CreatedAt: time.Now().UTC(),
			}
			if err := s.st.CreateOption(ctx, o); err != nil {
				return err
			}
		}
		return nil
	}
	if err := seed(models.OptionTypeStatus, defaultStatusOptions); err != nil {
		return err
	}
	return seed(models.OptionTypeReason, defaultReasonOptions)
}
