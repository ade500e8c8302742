package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/water-supply/internal/persistence"
	"github.com/example/water-supply/internal/recurrence"
	"github.com/example/water-supply/internal/status"
	"github.com/example/water-supply/internal/supply"
)

// SupplyService parses supply profile documents, stores them per house and
// derives statuses and supply slots from them.
type SupplyService struct {
	profiles ProfileStore
	resolver StatusResolver
	engine   OccurrenceGenerator
	now      func() time.Time
	location *time.Location
	logger   *slog.Logger
	metrics  MetricsRecorder
}

// NewSupplyService constructs a supply service. A nil resolver or engine is
// replaced by the default implementation.
func NewSupplyService(profiles ProfileStore, resolver StatusResolver, engine OccurrenceGenerator, opts Options) *SupplyService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	if resolver == nil {
		resolver = status.NewResolver()
	}
	if engine == nil {
		engine = recurrence.NewEngine(loc)
	}
	var metrics MetricsRecorder = noopMetrics{}
	if opts.Metrics != nil {
		metrics = opts.Metrics
	}
	return &SupplyService{
		profiles: profiles,
		resolver: resolver,
		engine:   engine,
		now:      now,
		location: loc,
		logger:   defaultLogger(opts.Logger),
		metrics:  metrics,
	}
}

func (s *SupplyService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SupplyService", operation, attrs...)
}

func (s *SupplyService) observe(operation string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = ErrorKind(err)
	}
	s.metrics.ObserveEvaluation(operation, outcome, time.Since(started))
}

// EvaluateDocument parses raw as a profile document and resolves its status
// at the calendar date of at, or of the current time when at is nil.
func (s *SupplyService) EvaluateDocument(ctx context.Context, raw []byte, at *time.Time) (result Evaluation, err error) {
	if s == nil {
		err = fmt.Errorf("SupplyService is nil")
		return
	}

	started := time.Now()
	logger := s.loggerWith(ctx, "EvaluateDocument", "document_bytes", len(raw))
	defer func() {
		s.observe("EvaluateDocument", started, err)
		if err != nil {
			logger.ErrorContext(ctx, "failed to evaluate document", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "document evaluated",
			"house_id", result.Status.HouseID,
			"schedule_id", result.Status.CurrentScheduleID,
			"skipped_entries", len(result.Report.Skipped),
		)
	}()

	result.Profile, result.Report, err = s.parse(raw)
	if err != nil {
		return
	}

	result.Status, err = s.resolver.ResolveAt(result.Profile, s.referenceTime(at))
	return
}

// RegisterProfile parses raw and stores it for houseID. The document must
// name a house; when houseID is not empty the two must agree. Documents whose
// validity window cannot be parsed are rejected.
func (s *SupplyService) RegisterProfile(ctx context.Context, houseID string, raw []byte) (result Registration, err error) {
	if s == nil {
		err = fmt.Errorf("SupplyService is nil")
		return
	}
	if s.profiles == nil {
		err = fmt.Errorf("profile store not configured")
		return
	}

	houseID = strings.TrimSpace(houseID)
	started := time.Now()
	logger := s.loggerWith(ctx, "RegisterProfile", "house_id", houseID)
	defer func() {
		s.observe("RegisterProfile", started, err)
		if err != nil {
			logger.ErrorContext(ctx, "failed to register profile", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("profile_id", result.Record.ID).InfoContext(ctx, "profile registered",
			"skipped_entries", len(result.Report.Skipped),
		)
	}()

	result.Profile, result.Report, err = s.parse(raw)
	if err != nil {
		return
	}

	vErr := &ValidationError{}
	documentHouse := strings.TrimSpace(result.Profile.HouseID)
	switch {
	case documentHouse == "":
		vErr.add(supply.KeyHouseID, "is required")
	case houseID != "" && documentHouse != houseID:
		vErr.add(supply.KeyHouseID, fmt.Sprintf("must match house %q", houseID))
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if _, err = result.Profile.ValidityWindow(); err != nil {
		return
	}

	result.Record, err = s.profiles.SaveProfile(ctx, persistence.ProfileRecord{
		HouseID:  documentHouse,
		Document: raw,
	})
	if err != nil {
		err = mapProfileRepoError(err)
	}
	return
}

// ProfileForHouse returns the stored profile document of houseID.
func (s *SupplyService) ProfileForHouse(ctx context.Context, houseID string) (persistence.ProfileRecord, error) {
	if s == nil {
		return persistence.ProfileRecord{}, fmt.Errorf("SupplyService is nil")
	}
	record, err := s.load(ctx, houseID)
	if err != nil {
		s.loggerWith(ctx, "ProfileForHouse", "house_id", houseID).
			ErrorContext(ctx, "failed to load profile", "error", err, "error_kind", ErrorKind(err))
		return persistence.ProfileRecord{}, err
	}
	return record, nil
}

// StatusForHouse resolves the status of the profile stored for houseID.
func (s *SupplyService) StatusForHouse(ctx context.Context, houseID string, at *time.Time) (result status.Status, err error) {
	if s == nil {
		err = fmt.Errorf("SupplyService is nil")
		return
	}

	started := time.Now()
	logger := s.loggerWith(ctx, "StatusForHouse", "house_id", houseID)
	defer func() {
		s.observe("StatusForHouse", started, err)
		if err != nil {
			logger.ErrorContext(ctx, "failed to resolve status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "status resolved",
			"schedule_id", result.CurrentScheduleID,
			"active", result.Active,
		)
	}()

	var profile supply.Profile
	profile, err = s.storedProfile(ctx, houseID)
	if err != nil {
		return
	}

	result, err = s.resolver.ResolveAt(profile, s.referenceTime(at))
	return
}

// SuppliesForHouse lists the supply slots of the profile stored for houseID
// between from and to, with the slots that overlap. Either bound may be nil,
// in which case the validity window bounds the listing.
func (s *SupplyService) SuppliesForHouse(ctx context.Context, houseID string, from, to *time.Time) (result SupplyListing, err error) {
	if s == nil {
		err = fmt.Errorf("SupplyService is nil")
		return
	}

	started := time.Now()
	logger := s.loggerWith(ctx, "SuppliesForHouse", "house_id", houseID)
	defer func() {
		s.observe("SuppliesForHouse", started, err)
		if err != nil {
			logger.ErrorContext(ctx, "failed to list supplies", "error", err, "error_kind", ErrorKind(err))
			return
		}
		if len(result.Overlaps) > 0 {
			logger.WarnContext(ctx, "supply slots overlap", "overlaps", len(result.Overlaps))
		}
		logger.InfoContext(ctx, "supplies listed", "count", len(result.Occurrences))
	}()

	var profile supply.Profile
	profile, err = s.storedProfile(ctx, houseID)
	if err != nil {
		return
	}

	var occurrences []recurrence.Occurrence
	occurrences, err = s.engine.Occurrences(profile, recurrence.GenerateOptions{
		RangeStart: s.inLocation(from),
		RangeEnd:   s.inLocation(to),
	})
	if err != nil {
		return
	}
	if occurrences == nil {
		occurrences = []recurrence.Occurrence{}
	}
	result = SupplyListing{Occurrences: occurrences, Overlaps: recurrence.DetectOverlaps(occurrences)}
	return
}

// ListProfiles returns the stored profile records ordered by house ID.
func (s *SupplyService) ListProfiles(ctx context.Context) (records []persistence.ProfileRecord, err error) {
	if s == nil {
		return nil, fmt.Errorf("SupplyService is nil")
	}
	if s.profiles == nil {
		return nil, fmt.Errorf("profile store not configured")
	}

	logger := s.loggerWith(ctx, "ListProfiles")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list profiles", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "profiles listed", "count", len(records))
	}()

	records, err = s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, mapProfileRepoError(err)
	}
	if records == nil {
		records = []persistence.ProfileRecord{}
	}
	return records, nil
}

// RemoveProfile deletes the profile stored for houseID.
func (s *SupplyService) RemoveProfile(ctx context.Context, houseID string) (err error) {
	if s == nil {
		return fmt.Errorf("SupplyService is nil")
	}
	if s.profiles == nil {
		return fmt.Errorf("profile store not configured")
	}

	houseID = strings.TrimSpace(houseID)
	logger := s.loggerWith(ctx, "RemoveProfile", "house_id", houseID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to remove profile", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "profile removed")
	}()

	if houseID == "" {
		err = &ValidationError{FieldErrors: map[string]string{supply.KeyHouseID: "is required"}}
		return
	}

	if err = s.profiles.DeleteProfile(ctx, houseID); err != nil {
		err = mapProfileRepoError(err)
	}
	return
}

func (s *SupplyService) parse(raw []byte) (supply.Profile, supply.ParseReport, error) {
	doc, err := supply.DecodeDocument(raw)
	if err != nil {
		return supply.Profile{}, supply.ParseReport{}, err
	}
	profile, report, err := supply.ParseWithReport(doc)
	if err != nil {
		return supply.Profile{}, supply.ParseReport{}, err
	}
	if len(report.Skipped) > 0 {
		s.metrics.AddSkippedEntries(len(report.Skipped))
	}
	return profile, report, nil
}

func (s *SupplyService) load(ctx context.Context, houseID string) (persistence.ProfileRecord, error) {
	if s.profiles == nil {
		return persistence.ProfileRecord{}, fmt.Errorf("profile store not configured")
	}
	houseID = strings.TrimSpace(houseID)
	if houseID == "" {
		return persistence.ProfileRecord{}, &ValidationError{FieldErrors: map[string]string{supply.KeyHouseID: "is required"}}
	}
	record, err := s.profiles.GetProfile(ctx, houseID)
	if err != nil {
		return persistence.ProfileRecord{}, mapProfileRepoError(err)
	}
	return record, nil
}

func (s *SupplyService) storedProfile(ctx context.Context, houseID string) (supply.Profile, error) {
	record, err := s.load(ctx, houseID)
	if err != nil {
		return supply.Profile{}, err
	}
	doc, err := supply.DecodeDocument(record.Document)
	if err != nil {
		return supply.Profile{}, fmt.Errorf("stored profile for house %s: %w", record.HouseID, err)
	}
	profile, err := supply.Parse(doc)
	if err != nil {
		return supply.Profile{}, fmt.Errorf("stored profile for house %s: %w", record.HouseID, err)
	}
	return profile, nil
}

func (s *SupplyService) referenceTime(at *time.Time) time.Time {
	if at != nil {
		return at.In(s.location)
	}
	return s.now().In(s.location)
}

func (s *SupplyService) inLocation(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	local := t.In(s.location)
	return &local
}

func mapProfileRepoError(err error) error {
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConstraintViolation):
		return &ValidationError{FieldErrors: map[string]string{supply.KeyHouseID: "violates store constraints"}}
	default:
		return err
	}
}
