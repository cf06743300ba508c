package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"clubroster/internal/ingest"
	"clubroster/internal/models"
	"clubroster/internal/roster"
	"clubroster/internal/store"
)

// BulkUploadMembers ingests a member CSV. Rows with an explicit number
// that is already taken are skipped; numberless rows draw from a
// counter seeded once from the roster at the start of the batch. Parse
// failures become row errors, capped for the response.
func (s *Service) BulkUploadMembers(ctx context.Context, filename string, content []byte) (models.BulkResult, error) {
	text, err := s.decodeCSV(filename, content)
	if err != nil {
		return models.BulkResult{}, err
	}
	rows, err := ingest.ReadRows(text)
	if err != nil {
		return models.BulkResult{}, validationf("malformed CSV: %v", err)
	}

	numbers, err := s.st.MemberNumbers(ctx)
	if err != nil {
		return models.BulkResult{}, err
	}
	seed := roster.NextSeed(numbers)
	taken := make(map[string]bool, len(numbers))
	for _, n := range numbers {
		taken[n] = true
	}

	var result models.BulkResult
	var rowErrs []string
	for i, row := range rows {
		line := i + 2 // header is line 1
		parsed, err := ingest.ParseMemberRow(row, line)
		if err != nil {
			rowErrs = append(rowErrs, err.Error())
			continue
		}
		number := parsed.Number
		if number != "" {
			if taken[number] {
				result.SkippedCount++
				continue
			}
		} else {
			for taken[strconv.Itoa(seed)] {
				seed++
			}
			number = strconv.Itoa(seed)
			seed++
		}

		m := parsed.Member
		m.MemberID = store.NewID("member")
		m.MemberNumber = number
		now := time.Now().UTC()
		m.CreatedAt = now
		m.UpdatedAt = now
		if err := s.st.CreateMember(ctx, m); err != nil {
			if errors.Is(err, store.ErrConflict) {
				result.SkippedCount++
				continue
			}
			rowErrs = append(rowErrs, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		taken[number] = true
		result.InsertedCount++
	}

	result.Errors, result.MoreErrors = ingest.CapErrors(rowErrs, s.cfg.BulkErrorPreview)
	return result, nil
}

// BulkUploadVehicles ingests a vehicle CSV, skipping rows whose
// registration already belongs to a non-archived vehicle.
func (s *Service) BulkUploadVehicles(ctx context.Context, filename string, content []byte) (models.BulkResult, error) {
	text, err := s.decodeCSV(filename, content)
	if err != nil {
		return models.BulkResult{}, err
	}
	rows, err := ingest.ReadRows(text)
	if err != nil {
		return models.BulkResult{}, validationf("malformed CSV: %v", err)
	}

	regs, err := s.st.ActiveRegistrations(ctx)
	if err != nil {
		return models.BulkResult{}, err
	}
	seen := make(map[string]bool, len(regs))
	for _, r := range regs {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			seen[r] = true
		}
	}

	var result models.BulkResult
	var rowErrs []string
	for i, row := range rows {
		line := i + 2
		v, err := ingest.ParseVehicleRow(row, line)
		if err != nil {
			rowErrs = append(rowErrs, err.Error())
			continue
		}
		key := strings.ToLower(v.Registration)
		if key != "" && seen[key] {
			result.SkippedCount++
			continue
		}

		v.VehicleID = store.NewID("vehicle")
		now := time.Now().UTC()
		v.CreatedAt = now
		v.UpdatedAt = now
		if err := s.st.CreateVehicle(ctx, v); err != nil {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d: %v", line, err))
			continue
		}
		if key != "" {
			seen[key] = true
		}
		result.InsertedCount++
	}

	result.Errors, result.MoreErrors = ingest.CapErrors(rowErrs, s.cfg.BulkErrorPreview)
	return result, nil
}

func (s *Service) decodeCSV(filename string, content []byte) (string, error) {
	if err := ingest.CheckFilename(filename); err != nil {
		return "", err
	}
	return ingest.Decode(content)
}
